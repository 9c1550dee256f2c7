package datestore

import "housebot/internal/clock"

// InvalidLine is a line that could not be parsed as a PendingDate.
// Line is 1-based.
type InvalidLine struct {
	Line int
	Text string
	Err  error
}

// Result is the outcome of compacting a store against a given day.
type Result struct {
	// Kept are the original lines, verbatim and in order, whose date is
	// strictly after today.
	Kept []string
	// Fired holds one entry per line whose date is today.
	Fired []PendingDate
	// Expired holds dates before today. They are dropped without firing.
	Expired []PendingDate
	// Invalid lines are dropped too.
	Invalid []InvalidLine
}

// Compact classifies every line against today. It has no side effects.
func Compact(lines []string, today clock.Date) Result {
	res := Result{Kept: make([]string, 0, len(lines))}
	for i, line := range lines {
		pd, err := ParsePendingDate(line)
		if err != nil {
			res.Invalid = append(res.Invalid, InvalidLine{Line: i + 1, Text: line, Err: err})
			continue
		}
		switch c := pd.Date().Compare(today); {
		case c == 0:
			res.Fired = append(res.Fired, pd)
		case c > 0:
			res.Kept = append(res.Kept, line)
		default:
			res.Expired = append(res.Expired, pd)
		}
	}
	return res
}

// Changed reports whether writing Kept back would alter the store.
func (r Result) Changed() bool {
	return len(r.Fired) > 0 || len(r.Expired) > 0 || len(r.Invalid) > 0
}
