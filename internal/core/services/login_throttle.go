package services

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginThrottle limits login attempts per username
type LoginThrottle struct {
	mu       sync.Mutex
	limiters map[string]*throttleEntry
	every    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// sweepThreshold is the map size above which idle entries are dropped
const sweepThreshold = 1024

// NewLoginThrottle allows burst attempts, refilled one per interval
func NewLoginThrottle(interval time.Duration, burst int) *LoginThrottle {
	return &LoginThrottle{
		limiters: make(map[string]*throttleEntry),
		every:    rate.Every(interval),
		burst:    burst,
		idleTTL:  interval * time.Duration(burst) * 2,
		now:      time.Now,
	}
}

// Allow reports whether username may attempt a login now
func (t *LoginThrottle) Allow(username string) bool {
	key := strings.ToLower(strings.TrimSpace(username))
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.limiters) > sweepThreshold {
		for k, e := range t.limiters {
			if now.Sub(e.lastSeen) > t.idleTTL {
				delete(t.limiters, k)
			}
		}
	}

	e, ok := t.limiters[key]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(t.every, t.burst)}
		t.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
