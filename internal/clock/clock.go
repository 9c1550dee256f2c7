// Package clock provides the reference wall clock used by every job and the
// time-of-day arithmetic behind "sleep until HH:MM:SS".
//
// All scheduling decisions use a single fixed UTC offset (UTC+2 by default).
// The offset is not DST-aware on purpose: a job configured for 20:00 fires at
// 18:00 UTC all year round.
package clock

import (
	"context"
	"fmt"
	"time"
)

// DefaultOffset is the reference clock offset east of UTC.
const DefaultOffset = 2 * time.Hour

// Clock is the only source of "now" for jobs.
//
// Sleep suspends the caller for d or until ctx is done, whichever comes first.
// Implementations must not busy-wait.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Reference projects the system clock into a fixed UTC offset.
type Reference struct {
	loc *time.Location
}

// NewReference returns a clock reporting the current instant at the given
// offset east of UTC. The offset must be a whole number of seconds within
// ±14h.
func NewReference(offset time.Duration) (*Reference, error) {
	if offset%time.Second != 0 || offset < -14*time.Hour || offset > 14*time.Hour {
		return nil, fmt.Errorf("clock: invalid utc offset %s", offset)
	}
	return &Reference{loc: time.FixedZone(zoneName(offset), int(offset/time.Second))}, nil
}

func (r *Reference) Location() *time.Location { return r.loc }

func (r *Reference) Now() time.Time { return time.Now().In(r.loc) }

func (r *Reference) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func zoneName(offset time.Duration) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	if m == 0 {
		return fmt.Sprintf("UTC%s%d", sign, h)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, h, m)
}

// NextOccurrence returns how long it takes from now until the wall clock (in
// now's location) next reads ct. The result is always strictly positive: if
// now is exactly ct, the next occurrence is a day later.
func NextOccurrence(now time.Time, ct ClockTime) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), ct.hour, ct.minute, ct.second, 0, now.Location())
	for !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// SleepUntil suspends the caller until the next occurrence of ct on c.
//
// The target instant is fixed before sleeping; if the clock wakes up early
// the remainder is slept again, so a job never runs twice for one occurrence.
func SleepUntil(ctx context.Context, c Clock, ct ClockTime) error {
	now := c.Now()
	target := now.Add(NextOccurrence(now, ct))
	for {
		if err := c.Sleep(ctx, target.Sub(now)); err != nil {
			return err
		}
		now = c.Now()
		if !now.Before(target) {
			return nil
		}
	}
}
