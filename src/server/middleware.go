package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"trade-dashboard/src/session"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

const workspaceKey = "workspace"

var httpRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dashboard_http_requests_total",
		Help: "HTTP requests served by the dashboard.",
	},
	[]string{"method", "route", "status"},
)

func init() {
	prometheus.MustRegister(httpRequests)
}

// -----------------------------------------------------------------------------
// Access log
// -----------------------------------------------------------------------------

func (s *DashboardServer) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		s.Logger.Debug("%s %s %d %s %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.ClientIP())
	}
}

// -----------------------------------------------------------------------------
// Recovery
// -----------------------------------------------------------------------------

func (s *DashboardServer) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err interface{}) {
		s.Logger.Error("Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// -----------------------------------------------------------------------------
// Rate limit
// -----------------------------------------------------------------------------

// rateLimiter keeps one token bucket per client IP; idle buckets expire.
type rateLimiter struct {
	every   time.Duration
	burst   int
	buckets *cache.Cache
}

func newRateLimiter(every time.Duration, burst int) *rateLimiter {
	return &rateLimiter{
		every:   every,
		burst:   burst,
		buckets: cache.New(10*time.Minute, 5*time.Minute),
	}
}

func (rl *rateLimiter) allow(key string) bool {
	if v, ok := rl.buckets.Get(key); ok {
		return v.(*rate.Limiter).Allow()
	}
	l := rate.NewLimiter(rate.Every(rl.every), rl.burst)
	// Add fails when another request created the bucket first
	if err := rl.buckets.Add(key, l, cache.DefaultExpiration); err != nil {
		if v, ok := rl.buckets.Get(key); ok {
			return v.(*rate.Limiter).Allow()
		}
	}
	return l.Allow()
}

func (s *DashboardServer) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, slow down."})
			return
		}
		c.Next()
	}
}

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

// sessionHandler binds the request to its workspace, issuing a new session
// cookie when the browser has none or it expired.
func (s *DashboardServer) sessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := s.Config.Session.CookieName
		id, _ := c.Cookie(name)

		ws, created := s.store.Acquire(id, s.credentials(c.Request))
		if created {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     name,
				Value:    ws.ID,
				Path:     "/",
				MaxAge:   int(s.store.TTL().Seconds()),
				HttpOnly: true,
				Secure:   s.Config.Session.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(workspaceKey, ws)
		c.Next()
	}
}

func workspace(c *gin.Context) *session.Workspace {
	return c.MustGet(workspaceKey).(*session.Workspace)
}
