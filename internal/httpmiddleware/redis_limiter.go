package httpmiddleware

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindow is a fixed-window per-key limiter shared across instances.
// Counters live in redis under prefix:key:window and expire with the
// window. When redis is unreachable the limiter fails open.
type RedisWindow struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisWindow creates a limiter allowing limit requests per minute.
func NewRedisWindow(client *redis.Client, prefix string, limit int) *RedisWindow {
	if prefix == "" {
		prefix = "faceattend:ratelimit"
	}
	return &RedisWindow{client: client, prefix: prefix, limit: limit, window: time.Minute}
}

// Allow increments the key's counter in the current window.
func (l *RedisWindow) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	slot := time.Now().Unix() / int64(l.window.Seconds())
	redisKey := l.prefix + ":" + key + ":" + strconv.FormatInt(slot, 10)

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true
	}
	return count.Val() <= int64(l.limit)
}
