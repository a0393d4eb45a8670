// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/bayarlink/bayarlink-backend/internal/config"
)

func limitedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func requestFrom(r *gin.Engine, ip string) int {
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterRejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Minute), 2)
	r := limitedRouter(rl.Middleware())

	assert.Equal(t, http.StatusOK, requestFrom(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, requestFrom(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(r, "10.0.0.1"))
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Minute), 1)
	r := limitedRouter(rl.Middleware())

	assert.Equal(t, http.StatusOK, requestFrom(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(r, "10.0.0.1"))

	// A different client has its own bucket
	assert.Equal(t, http.StatusOK, requestFrom(r, "10.0.0.2"))
}

func TestUploadRateLimitUsesConfiguredBudget(t *testing.T) {
	cfg := config.RateLimitConfig{
		GeneralPerSecond: 10,
		GeneralBurst:     20,
		AuthPerMinute:    5,
		UploadPerMinute:  2,
	}
	r := limitedRouter(UploadRateLimit(cfg))

	assert.Equal(t, http.StatusOK, requestFrom(r, "10.0.0.3"))
	assert.Equal(t, http.StatusOK, requestFrom(r, "10.0.0.3"))
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(r, "10.0.0.3"))
}
