package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/quizx/internal/dto"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorSet holds one limiter per key.
type visitorSet struct {
	mu      sync.Mutex
	entries map[string]*visitor
	every   rate.Limit
	burst   int
	expiry  time.Duration
}

func newVisitorSet(maxRequests int, window time.Duration) *visitorSet {
	expiry := window * 3
	if expiry < time.Minute {
		expiry = time.Minute
	}
	return &visitorSet{
		entries: make(map[string]*visitor),
		every:   rate.Every(window / time.Duration(maxRequests)),
		burst:   maxRequests,
		expiry:  expiry,
	}
}

func (s *visitorSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	v, ok := s.entries[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.every, s.burst)}
		s.entries[key] = v
	}
	v.lastSeen = now
	s.mu.Unlock()
	return v.limiter.AllowN(now, 1)
}

// sweep drops entries idle for longer than the expiry.
func (s *visitorSet) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, v := range s.entries {
		if now.Sub(v.lastSeen) > s.expiry {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped
}

func (s *visitorSet) janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// RateLimiter allows maxRequests per window for each session, falling back to
// the client IP before a session is known. Entries idle for three windows are
// dropped until ctx is done. A non-positive maxRequests disables limiting.
func RateLimiter(ctx context.Context, maxRequests int, window time.Duration) gin.HandlerFunc {
	if maxRequests <= 0 || window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	visitors := newVisitorSet(maxRequests, window)
	go visitors.janitor(ctx, time.Minute)

	return func(c *gin.Context) {
		key := SessionID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !visitors.allow(key, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{Message: "Too many quiz requests. Please wait a moment."})
			return
		}
		c.Next()
	}
}
