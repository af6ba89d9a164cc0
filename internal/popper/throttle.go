package popper

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// throttle limits how often event-driven updates run. Calls over the limit
// collapse into a single trailing call, so the last event is never lost. A nil
// throttle runs every call immediately.
type throttle struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	trailing *time.Timer
	stopped  bool
}

func newThrottle(interval time.Duration) *throttle {
	if interval <= 0 {
		return nil
	}
	return &throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (t *throttle) do(fn func()) {
	if t == nil {
		fn()
		return
	}

	t.mu.Lock()
	if t.stopped || t.trailing != nil {
		t.mu.Unlock()
		return
	}
	if t.limiter.Allow() {
		t.mu.Unlock()
		fn()
		return
	}
	delay := t.limiter.Reserve().Delay()
	t.trailing = time.AfterFunc(delay, func() {
		t.mu.Lock()
		t.trailing = nil
		stopped := t.stopped
		t.mu.Unlock()
		if !stopped {
			fn()
		}
	})
	t.mu.Unlock()
}

func (t *throttle) stop() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.trailing != nil {
		t.trailing.Stop()
		t.trailing = nil
	}
}
