package clock

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

var ErrInvalidClockTime = errors.New("invalid clock time")

// ClockTime is a time of day with second precision.
// The zero value is midnight.
type ClockTime struct {
	hour, minute, second int
}

// New validates the components and returns a ClockTime.
func New(hour, minute, second int) (ClockTime, error) {
	if hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("%w: hour %d out of range 0..23", ErrInvalidClockTime, hour)
	}
	if minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w: minute %d out of range 0..59", ErrInvalidClockTime, minute)
	}
	if second < 0 || second > 59 {
		return ClockTime{}, fmt.Errorf("%w: second %d out of range 0..59", ErrInvalidClockTime, second)
	}
	return ClockTime{hour: hour, minute: minute, second: second}, nil
}

// MustNew is New for constants; it panics on invalid input.
func MustNew(hour, minute, second int) ClockTime {
	ct, err := New(hour, minute, second)
	if err != nil {
		panic(err)
	}
	return ct
}

func (c ClockTime) Hour() int   { return c.hour }
func (c ClockTime) Minute() int { return c.minute }
func (c ClockTime) Second() int { return c.second }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.hour, c.minute, c.second)
}

// cronStar is robfig/cron's marker bit for a "*" field.
const cronStar = 1 << 63

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseClockTime accepts "HH:MM", "HH:MM:SS", or a cron expression that fires
// exactly once per day ("0 20 * * *", "30 0 7 * * *", "@daily").
func ParseClockTime(raw string) (ClockTime, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ClockTime{}, fmt.Errorf("%w: empty", ErrInvalidClockTime)
	}
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return parseDailyCron(s)
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return ClockTime{}, fmt.Errorf("%w: %q (use HH:MM, HH:MM:SS or a daily cron expression)", ErrInvalidClockTime, raw)
	}
	vals := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return ClockTime{}, fmt.Errorf("%w: %q: %v", ErrInvalidClockTime, raw, err)
		}
		vals[i] = n
	}
	return New(vals[0], vals[1], vals[2])
}

func parseDailyCron(s string) (ClockTime, error) {
	sched, err := cronParser.Parse(s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q: %v", ErrInvalidClockTime, s, err)
	}
	spec, ok := sched.(*cron.SpecSchedule)
	if !ok {
		return ClockTime{}, fmt.Errorf("%w: %q is not a daily schedule", ErrInvalidClockTime, s)
	}
	if spec.Dom&cronStar == 0 || spec.Month&cronStar == 0 || spec.Dow&cronStar == 0 {
		return ClockTime{}, fmt.Errorf("%w: %q must fire every day", ErrInvalidClockTime, s)
	}
	sec, ok1 := singleBit(spec.Second)
	minute, ok2 := singleBit(spec.Minute)
	hour, ok3 := singleBit(spec.Hour)
	if !ok1 || !ok2 || !ok3 {
		return ClockTime{}, fmt.Errorf("%w: %q must fire exactly once per day", ErrInvalidClockTime, s)
	}
	return New(hour, minute, sec)
}

func singleBit(field uint64) (int, bool) {
	if field&cronStar != 0 || bits.OnesCount64(field) != 1 {
		return 0, false
	}
	return bits.TrailingZeros64(field), true
}
