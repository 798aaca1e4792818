package session

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// QueryGate enforces the gateway's one-query-per-interval flow control on
// account and position queries. Orders and subscriptions are not gated.
// Acquire holds a mutex across the wait so concurrent callers pass the gate
// in arrival order instead of racing the limiter.
type QueryGate struct {
	mu      sync.Mutex
	limiter *rate.Limiter

	// Injectable for tests.
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func NewQueryGate(minInterval time.Duration) *QueryGate {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	return &QueryGate{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Acquire blocks until at least minInterval has passed since the previous
// acquisition, or the context is done.
func (g *QueryGate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	r := g.limiter.ReserveN(g.now(), 1)
	delay := r.DelayFrom(g.now())
	if delay <= 0 {
		return nil
	}
	if err := g.sleep(ctx, delay); err != nil {
		r.CancelAt(g.now())
		return err
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
