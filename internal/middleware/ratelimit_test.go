package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func trackRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/api/t/abc/visit", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func trackRequest(router *gin.Engine, ip string) int {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/t/abc/visit", nil)
	req.RemoteAddr = ip + ":40000"
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	router := trackRouter(NewRateLimiter(10, 10))

	if code := trackRequest(router, "192.168.1.1"); code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, code)
	}
}

func TestRateLimiter_BlocksOverBurst(t *testing.T) {
	router := trackRouter(NewRateLimiter(1, 2))

	var last int
	for i := 0; i < 5; i++ {
		last = trackRequest(router, "10.0.0.1")
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected %d after burst exhausted, got %d", http.StatusTooManyRequests, last)
	}
}

func TestRateLimiter_BucketsArePerIP(t *testing.T) {
	router := trackRouter(NewRateLimiter(1, 1))

	if code := trackRequest(router, "10.0.0.1"); code != http.StatusOK {
		t.Errorf("first IP: expected %d, got %d", http.StatusOK, code)
	}
	// A different visitor site should not share the first one's bucket.
	if code := trackRequest(router, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("second IP: expected %d, got %d", http.StatusOK, code)
	}
}
