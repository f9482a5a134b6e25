package transport

import (
	"sync"
	"sync/atomic"
)

// LoadingCoordinator defines a public type used by authkit APIs.
//
// It maintains the process-wide in-flight call counter behind the global busy
// indicator. The busy flag is derived exclusively from the counter; nothing may
// set it directly. The counter never goes below zero.
type LoadingCoordinator struct {
	mu       sync.Mutex
	count    int64
	onChange func(bool)
	clamped  atomic.Uint64
}

// NewLoadingCoordinator creates an idle coordinator.
func NewLoadingCoordinator() *LoadingCoordinator {
	return &LoadingCoordinator{}
}

// OnChange sets the callback fired when the busy flag transitions. The callback
// runs outside the coordinator's lock and may query Busy or InFlight.
func (l *LoadingCoordinator) OnChange(fn func(busy bool)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Register attaches the coordinator to the chain as a lifecycle hook and
// returns its handle. Calls flagged SkipLoader are exempt.
func (l *LoadingCoordinator) Register(c *Client) Handle {
	return c.UseLifecycle(func(call *Call) func() {
		if call.SkipLoader {
			return nil
		}
		return l.Begin()
	})
}

// Begin counts one call pass in flight and returns its settle function. The
// settle is idempotent: however many failure paths invoke it, the counter is
// decremented exactly once.
func (l *LoadingCoordinator) Begin() func() {
	l.mu.Lock()
	l.count++
	transitioned := l.count == 1
	fn := l.onChange
	l.mu.Unlock()

	if transitioned && fn != nil {
		fn(true)
	}

	var once sync.Once
	return func() {
		once.Do(l.settle)
	}
}

func (l *LoadingCoordinator) settle() {
	l.mu.Lock()
	decremented := false
	if l.count > 0 {
		l.count--
		decremented = true
	} else {
		// Clamp rather than go negative; record the bug for diagnostics.
		l.clamped.Add(1)
	}
	transitioned := decremented && l.count == 0
	fn := l.onChange
	l.mu.Unlock()

	if transitioned && fn != nil {
		fn(false)
	}
}

// Busy reports whether any non-exempt call is in flight.
func (l *LoadingCoordinator) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count > 0
}

// InFlight returns the current counter value.
func (l *LoadingCoordinator) InFlight() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// ClampHits returns how many times a settle found the counter already at zero.
func (l *LoadingCoordinator) ClampHits() uint64 {
	return l.clamped.Load()
}
