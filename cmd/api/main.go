package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faceattend/internal/clock"
	"faceattend/internal/config"
	"faceattend/internal/handler"
	"faceattend/internal/httpmiddleware"
	"faceattend/internal/ledger"
	"faceattend/internal/logging"
	"faceattend/internal/metrics"
	"faceattend/internal/registry"
	"faceattend/internal/stats"
	"faceattend/internal/storage"
	"faceattend/internal/storage/postgres"
	"faceattend/internal/storage/redisx"
	"faceattend/internal/storage/sqlite"
)

func main() {
	cfg := config.Load()
	log := logging.Setup()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.App, log *slog.Logger) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("invalid TZ_NAME, using UTC", "tz", cfg.Timezone, "error", err)
		loc = time.UTC
	}
	clk := clock.NewSystem(loc)

	redisClient := redisx.New(cfg.RedisAddr)
	defer redisClient.Close()

	mtx := metrics.New(prometheus.DefaultRegisterer)
	reg := registry.NewService(store, log, mtx)
	led := ledger.NewService(store, reg, clk, log, mtx)
	agg := stats.NewService(store, clk)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
	}))
	r.Use(securityHeaders())

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitRedis {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, "faceattend:ratelimit", cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}
	r.Use(httpmiddleware.RateLimit(limiter))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy})
	})

	h := handler.New(reg, led, agg, log)
	h.Register(r.Group("/api"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("forced shutdown", "error", err)
	}
	log.Info("server exited")
	return nil
}

func openStore(cfg config.App) (storage.Store, error) {
	if cfg.StorageDriver == "sqlite" {
		return sqlite.New(cfg.SQLitePath)
	}
	return postgres.New(cfg.DatabaseURL)
}

// securityHeaders sets the standard browser hardening headers.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
