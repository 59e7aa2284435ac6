package identity

import (
	"context"
	"errors"
	"sync"
	"time"
)

// AvailabilityResult is delivered to the checker's callback once a debounced
// check has completed and is still the latest one issued.
type AvailabilityResult struct {
	Username  string
	Available bool
	Err       error
}

// AvailabilityChecker debounces username-availability checks while the user is
// typing: a fixed delay restarts on every input, and only the result of the
// last issued check is delivered. Earlier in-flight checks are not cancelled;
// their results are discarded by comparing a monotonically increasing sequence
// number (last-write-wins).
//
// It is meant for embedding clients that drive a registration form in-process
// (a desktop or terminal frontend linking this package); the HTTP handlers do
// not use it, since over HTTP each keystroke is its own request and the client
// does the debouncing. Such callers own one checker per form, feed it
// keystrokes through Input and render the callback's results.
//
// When the remote check fails, the result reports Available=true with Err set,
// mirroring the client's optimistic behavior while typing. Registration never
// relies on this: Register re-checks and fails closed on store errors.
type AvailabilityChecker struct {
	resolver *Resolver
	delay    time.Duration
	onResult func(AvailabilityResult)

	mu    sync.Mutex
	seq   uint64
	timer *time.Timer
}

func NewAvailabilityChecker(r *Resolver, delay time.Duration, onResult func(AvailabilityResult)) *AvailabilityChecker {
	return &AvailabilityChecker{
		resolver: r,
		delay:    delay,
		onResult: onResult,
	}
}

// Input registers a new keystroke. The pending check, if any, is rescheduled.
// ctx is captured until the debounce delay fires and must outlive it; pass the
// form's lifetime context, not a per-keystroke one.
func (c *AvailabilityChecker) Input(ctx context.Context, username string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	issued := c.seq

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		c.run(ctx, issued, username)
	})
}

// Stop cancels any pending check. Results of checks already in flight are
// still discarded through the sequence comparison.
func (c *AvailabilityChecker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *AvailabilityChecker) run(ctx context.Context, issued uint64, username string) {
	available, err := c.resolver.CheckUsernameAvailable(ctx, username)

	result := AvailabilityResult{Username: username, Available: available, Err: err}
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			result.Available = false
		} else {
			result.Available = true
		}
	}

	c.mu.Lock()
	stale := issued != c.seq
	c.mu.Unlock()
	if stale {
		return
	}
	c.onResult(result)
}
