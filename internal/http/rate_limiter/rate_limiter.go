package rate_limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*clientLimiter)
	mu       sync.Mutex

	limit = rate.Limit(5)
	burst = 10
)

// Configure sets the per-client rate for limiters created afterwards.
// A non-positive rps disables limiting.
func Configure(rps float64, b int) {
	mu.Lock()
	defer mu.Unlock()

	if rps <= 0 {
		limit = rate.Inf
	} else {
		limit = rate.Limit(rps)
	}
	burst = b
	visitors = make(map[string]*clientLimiter)
}

func GetVisitor(key string) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[key]
	if !exists {
		limiter := rate.NewLimiter(limit, burst)
		visitors[key] = &clientLimiter{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// StartVisitorCleanupLoop drops limiters idle for more than idle until ctx
// is done.
func StartVisitorCleanupLoop(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupIdle(idle)
		}
	}
}

func cleanupIdle(idle time.Duration) {
	mu.Lock()
	defer mu.Unlock()

	for key, v := range visitors {
		if time.Since(v.lastSeen) > idle {
			delete(visitors, key)
		}
	}
}

func CleanupAllVisitors() {
	mu.Lock()
	defer mu.Unlock()

	visitors = make(map[string]*clientLimiter)
}
