package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestTokenBucketExhausts(t *testing.T) {
	l := NewSimpleTokenBucket(2, 2)

	if !l.Allow("1.2.3.4") {
		t.Fatal("first request should pass")
	}
	if !l.Allow("1.2.3.4") {
		t.Fatal("second request should pass")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("third request should be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatal("limits are per key")
	}
}

func TestTokenBucketCapacityDefaultsToRate(t *testing.T) {
	l := NewSimpleTokenBucket(0, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if l.Allow("k") {
		t.Fatal("fourth request should be limited")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(NewSimpleTokenBucket(1, 1)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", w.Code)
	}
}
