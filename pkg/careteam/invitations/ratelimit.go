package invitations

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter gates invitation responses per actor. The manager consults it
// before touching any state; counting is process-local.
type RateLimiter interface {
	Allow(actorID uint) bool
}

// actorLimiterEntry holds a rate limiter and last-seen timestamp for cleanup.
type actorLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ActorRateLimiter manages per-actor token buckets sized so that at most
// `limit` events fit in any `window`.
type ActorRateLimiter struct {
	mu       sync.Mutex
	limiters map[uint]*actorLimiterEntry
	rate     rate.Limit
	burst    int
	stop     chan struct{}
}

// NewActorRateLimiter creates a limiter allowing `limit` events per `window`
// for each actor. A limit below 1 is treated as 1.
func NewActorRateLimiter(limit int, window time.Duration) *ActorRateLimiter {
	if limit < 1 {
		limit = 1
	}
	rl := &ActorRateLimiter{
		limiters: make(map[uint]*actorLimiterEntry),
		rate:     rate.Every(window / time.Duration(limit)),
		burst:    limit,
		stop:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop terminates the cleanup goroutine. Allow keeps working after Stop;
// idle actors just stop being evicted.
func (rl *ActorRateLimiter) Stop() {
	close(rl.stop)
}

// Allow reports whether the actor may make another invitation response now.
func (rl *ActorRateLimiter) Allow(actorID uint) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[actorID]
	if !exists {
		entry = &actorLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[actorID] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// cleanup evicts actors not seen in the last 10 minutes.
func (rl *ActorRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for actorID, entry := range rl.limiters {
				if time.Since(entry.lastSeen) > 10*time.Minute {
					delete(rl.limiters, actorID)
				}
			}
			rl.mu.Unlock()
		}
	}
}
