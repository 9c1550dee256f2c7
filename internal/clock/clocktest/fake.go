// Package clocktest provides a manual clock for tests.
package clocktest

import (
	"context"
	"sync"
	"time"
)

// Fake is a clock.Clock whose Sleep returns immediately after advancing Now
// by the requested duration.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	stopAt int
	stop   context.CancelFunc
}

func New(now time.Time) *Fake { return &Fake{now: now} }

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	if f.stop != nil && len(f.sleeps)+1 >= f.stopAt {
		stop := f.stop
		f.stop = nil
		f.mu.Unlock()
		stop()
		return ctx.Err()
	}
	defer f.mu.Unlock()
	if d > 0 {
		f.now = f.now.Add(d)
	}
	f.sleeps = append(f.sleeps, d)
	return nil
}

// CancelAfter makes the n-th call to Sleep invoke cancel and return the
// context error instead of advancing. Loops that never return on their own
// use it to end a test.
func (f *Fake) CancelAfter(n int, cancel context.CancelFunc) {
	f.mu.Lock()
	f.stopAt = n
	f.stop = cancel
	f.mu.Unlock()
}

// Set moves the clock to t without recording a sleep.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Sleeps returns every duration passed to Sleep so far.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}
