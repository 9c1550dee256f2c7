// Package datestore holds the pending-date files behind reminder jobs.
//
// A store is a plain text file with one DD.MM.YYYY date per line. Once per
// day the owning job compacts it: dates equal to today fire, dates in the
// past or lines that don't parse are dropped, future dates are written back
// unchanged and in their original order.
package datestore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"housebot/internal/clock"
)

var ErrInvalidDate = errors.New("invalid date")

// PendingDate is one parsed line of a date store.
type PendingDate struct {
	Day   int
	Month int
	Year  int
}

// ParsePendingDate parses "DD.MM.YYYY". Each component must be an unsigned
// decimal number and the result must be a real calendar date. Surrounding
// whitespace is ignored.
func ParsePendingDate(line string) (PendingDate, error) {
	s := strings.TrimSpace(line)
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return PendingDate{}, fmt.Errorf("%w: %q: want DD.MM.YYYY, got %d component(s)", ErrInvalidDate, line, len(parts))
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return PendingDate{}, fmt.Errorf("%w: %q: %v", ErrInvalidDate, line, err)
		}
		v[i] = int(n)
	}
	pd := PendingDate{Day: v[0], Month: v[1], Year: v[2]}
	if !pd.valid() {
		return PendingDate{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDate, line)
	}
	return pd, nil
}

func (p PendingDate) valid() bool {
	if p.Month < 1 || p.Month > 12 || p.Day < 1 {
		return false
	}
	// time.Date normalises overflow (31.02 -> 02.03); a round trip catches it.
	t := time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.UTC)
	return t.Day() == p.Day && int(t.Month()) == p.Month && t.Year() == p.Year
}

// Date converts to a clock.Date for comparison with today.
func (p PendingDate) Date() clock.Date {
	return clock.Date{Year: p.Year, Month: time.Month(p.Month), Day: p.Day}
}

func (p PendingDate) String() string { return p.Date().String() }
