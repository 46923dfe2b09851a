// Package ratelimit implements a per-client fixed-window limiter for the
// authentication endpoints. It is constructed explicitly and injected, with
// its own lifecycle; there is no ambient global state.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client entry survives before cleanup.
const staleAfter = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks one token bucket per client IP.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client

	perMinute int
	burst     int
}

// New creates a limiter allowing perMinute requests with the given burst per
// client IP.
func New(perMinute, burst int) *Limiter {
	return &Limiter{
		clients:   make(map[string]*client),
		perMinute: perMinute,
		burst:     burst,
	}
}

// Allow reports whether the client may proceed and consumes one slot if so.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		c = &client{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.burst),
		}
		l.clients[ip] = c
	}

	c.lastSeen = time.Now()

	if len(l.clients) > 1000 {
		l.cleanupLocked()
	}

	return c.limiter.Allow()
}

// cleanupLocked drops entries idle longer than staleAfter. Caller holds mu.
func (l *Limiter) cleanupLocked() {
	cutoff := time.Now().Add(-staleAfter)

	for ip, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// Middleware creates Fiber middleware that rejects clients over the limit
// with 429.
func Middleware(l *Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.Allow(c.IP()) {
			log.Warn().Str("ip", c.IP()).Msg("rate limit exceeded")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too Many Requests",
			})
		}

		return c.Next()
	}
}
