package rest

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/daniilsolovey/sitecontent/internal/metrics"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

func (h *Handler) loggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		duration := time.Since(start)
		status := c.Response().Status
		r := c.Request()

		h.log.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", c.RealIP(),
		)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(duration.Seconds())

		return nil
	}
}

// clientIdleTTL is the shortest time a client bucket survives without
// requests. It is raised to the refill time of a bucket, so only full buckets
// are dropped.
const clientIdleTTL = 10 * time.Minute

type clientEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client IP.
type clientLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientEntry
	lastSweep time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	ttl := clientIdleTTL
	if rps > 0 {
		ttl = max(ttl, time.Duration(float64(burst)/rps*float64(time.Second)))
	}

	return &clientLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		ttl:       ttl,
		now:       time.Now,
		clients:   make(map[string]*clientEntry),
		lastSweep: time.Now(),
	}
}

func (l *clientLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}

	entry, ok := l.clients[key]
	if !ok {
		entry = &clientEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now

	return entry.lim
}

// sweep drops the buckets idle for longer than ttl. l.mu must be held.
func (l *clientLimiter) sweep(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) >= l.ttl {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.clients)
}

// rateLimitMiddleware rejects clients that exhausted their bucket with 429.
func (h *Handler) rateLimitMiddleware(l *clientLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}

			if !l.get(ip).Allow() {
				metrics.RateLimitRejected.Inc()
				h.log.Warn("rate limit exceeded", "remote_addr", ip, "path", c.Path())
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, Response{Success: false, Message: "rate limit exceeded"})
			}

			return next(c)
		}
	}
}
