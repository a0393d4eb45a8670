// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/bayarlink/bayarlink-backend/internal/config"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

const clientIdleTimeout = 3 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP. Buckets for clients
// idle longer than clientIdleTimeout are dropped by a background sweep.
type RateLimiter struct {
	mtx     sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
	}

	go rl.sweepIdleClients()

	return rl
}

func (rl *RateLimiter) sweepIdleClients() {
	for {
		time.Sleep(time.Minute)

		rl.mtx.Lock()
		for ip, c := range rl.clients {
			if time.Since(c.lastSeen) > clientIdleTimeout {
				delete(rl.clients, ip)
			}
		}
		rl.mtx.Unlock()
	}
}

// Allow reports whether the client identified by ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = time.Now()

	return c.limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"Too many requests, please try again later", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GeneralRateLimit throttles all traffic per client IP.
func GeneralRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return NewRateLimiter(rate.Limit(cfg.GeneralPerSecond), cfg.GeneralBurst).Middleware()
}

// AuthRateLimit throttles login attempts, which are bcrypt-priced.
func AuthRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return NewRateLimiter(rate.Every(time.Minute/time.Duration(cfg.AuthPerMinute)), cfg.AuthPerMinute).Middleware()
}

// UploadRateLimit throttles file-carrying endpoints: proof submissions and
// product uploads, each up to 2MB of multipart body.
func UploadRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return NewRateLimiter(rate.Every(time.Minute/time.Duration(cfg.UploadPerMinute)), cfg.UploadPerMinute).Middleware()
}
