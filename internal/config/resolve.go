package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"housebot/internal/clock"
)

// Settings is a validated Config with durations and clock times parsed.
type Settings struct {
	Token          string
	RatePerSec     int
	RequestTimeout time.Duration
	ThreadID       int

	UTCOffset time.Duration

	Greeter    GreeterSettings
	Dinner     DinnerSettings
	Reminders  []ReminderSettings
	WatchDates bool
}

type GreeterSettings struct {
	Enabled bool
	At      clock.ClockTime
	APIURL  string
	APIKey  string
	Timeout time.Duration
}

type DinnerSettings struct {
	Enabled       bool
	OpenAt        clock.ClockTime
	CloseAt       clock.ClockTime
	SundayCloseAt clock.ClockTime
}

type ReminderSettings struct {
	Name    string
	File    string
	Message string
	At      clock.ClockTime
}

var defaultReminderAt = clock.MustNew(20, 0, 0)

// Resolve validates c. Every problem is reported, joined into one error.
func (c *Config) Resolve() (*Settings, error) {
	var errs []error
	fail := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	clockAt := func(path, raw string, def clock.ClockTime) clock.ClockTime {
		if strings.TrimSpace(raw) == "" {
			return def
		}
		ct, err := clock.ParseClockTime(raw)
		if err != nil {
			fail(fmt.Errorf("%s: %w", path, err))
		}
		return ct
	}

	s := &Settings{
		Token:      strings.TrimSpace(c.Telegram.Token),
		RatePerSec: c.Telegram.RatePerSec,
		ThreadID:   c.Telegram.ThreadID,
		WatchDates: c.DateStore.Watch,
	}
	if s.Token == "" {
		fail(fmt.Errorf("telegram token is required (set %s)", EnvToken))
	}
	if s.RatePerSec <= 0 {
		s.RatePerSec = 1
	}
	var err error
	s.RequestTimeout, err = ParseDurationOrDefault("telegram.poll_timeout", c.Telegram.PollTimeout, 30*time.Second)
	fail(err)

	s.UTCOffset, err = parseOffset("clock.utc_offset", c.Clock.UTCOffset, clock.DefaultOffset)
	fail(err)
	if err == nil {
		if _, err := clock.NewReference(s.UTCOffset); err != nil {
			fail(fmt.Errorf("clock.utc_offset: %w", err))
		}
	}

	s.Greeter = GreeterSettings{
		Enabled: c.Greeter.Enabled,
		At:      clockAt("greeter.at", c.Greeter.At, clock.MustNew(7, 0, 0)),
		APIURL:  strings.TrimSpace(c.Greeter.APIURL),
		APIKey:  strings.TrimSpace(c.Greeter.APIKey),
	}
	s.Greeter.Timeout, err = ParseDurationOrDefault("greeter.timeout", c.Greeter.Timeout, 30*time.Second)
	fail(err)

	s.Dinner = DinnerSettings{
		Enabled:       c.Dinner.Enabled,
		OpenAt:        clockAt("dinner.open_at", c.Dinner.OpenAt, clock.MustNew(8, 0, 0)),
		CloseAt:       clockAt("dinner.close_at", c.Dinner.CloseAt, clock.MustNew(16, 0, 0)),
		SundayCloseAt: clockAt("dinner.sunday_close_at", c.Dinner.SundayCloseAt, clock.MustNew(0, 0, 0)),
	}

	names := map[string]bool{"greeter": true, "dinner": true}
	files := map[string]string{}
	for i, r := range c.Reminders {
		path := fmt.Sprintf("reminders[%d]", i)
		rs := ReminderSettings{
			Name:    strings.TrimSpace(r.Name),
			File:    strings.TrimSpace(r.File),
			Message: r.Message,
			At:      clockAt(path+".at", r.At, defaultReminderAt),
		}
		switch {
		case rs.Name == "":
			fail(fmt.Errorf("%s.name is required", path))
		case names[rs.Name]:
			fail(fmt.Errorf("%s.name %q is not unique", path, rs.Name))
		}
		names[rs.Name] = true
		if rs.File == "" {
			fail(fmt.Errorf("%s.file is required", path))
		} else {
			key := filepath.Clean(rs.File)
			if other, ok := files[key]; ok {
				fail(fmt.Errorf("%s.file %q is already owned by reminder %q", path, rs.File, other))
			}
			files[key] = rs.Name
		}
		if strings.TrimSpace(rs.Message) == "" {
			fail(fmt.Errorf("%s.message is required", path))
		}
		s.Reminders = append(s.Reminders, rs)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}
