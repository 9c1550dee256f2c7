package clock

import (
	"errors"
	"testing"
)

func TestNewRejectsOutOfRange(t *testing.T) {
	t.Parallel()
	bad := [][3]int{{24, 0, 0}, {-1, 0, 0}, {0, 60, 0}, {0, 0, 60}, {0, -1, 0}}
	for _, c := range bad {
		if _, err := New(c[0], c[1], c[2]); !errors.Is(err, ErrInvalidClockTime) {
			t.Fatalf("New(%v) err = %v, want ErrInvalidClockTime", c, err)
		}
	}
	ct, err := New(23, 59, 59)
	if err != nil {
		t.Fatalf("New(23,59,59): %v", err)
	}
	if ct.String() != "23:59:59" {
		t.Fatalf("String() = %q", ct.String())
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("MustNew(25, 0, 0) did not panic")
		}
	}()
	MustNew(25, 0, 0)
}

func TestParseClockTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want ClockTime
	}{
		{raw: "07:00", want: MustNew(7, 0, 0)},
		{raw: "20:00:00", want: MustNew(20, 0, 0)},
		{raw: " 16:30:15 ", want: MustNew(16, 30, 15)},
		{raw: "0 20 * * *", want: MustNew(20, 0, 0)},
		{raw: "15 30 8 * * *", want: MustNew(8, 30, 15)},
		{raw: "@daily", want: MustNew(0, 0, 0)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := ParseClockTime(tt.raw)
			if err != nil {
				t.Fatalf("ParseClockTime(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseClockTime(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseClockTimeErrors(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"",
		"7",
		"24:00",
		"07:60",
		"aa:bb",
		"1:2:3:4",
		"*/5 * * * *",
		"0 8 * * 1",
		"0 8,16 * * *",
		"@every 1h",
		"@hourly",
	} {
		if _, err := ParseClockTime(raw); !errors.Is(err, ErrInvalidClockTime) {
			t.Fatalf("ParseClockTime(%q) err = %v, want ErrInvalidClockTime", raw, err)
		}
	}
}
