package service

import (
	"errors"
	"fmt"
	"time"

	"climate-server/internal/modules/weather/types"
)

// trailingDays is the length of the "last year" window ending at the latest
// observation.
const trailingDays = 365

// ErrInvalidDate marks caller-supplied dates that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a strict YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q (expected YYYY-MM-DD)", ErrInvalidDate, s)
	}
	return t, nil
}

// trailingYear returns (latest - 365 days, latest].
func trailingYear(latest time.Time) types.Window {
	return types.Window{
		Start: latest.AddDate(0, 0, -trailingDays),
		End:   latest,
	}
}

// rangeQuery is a caller-supplied window whose end may still need to be
// resolved against the latest observation.
type rangeQuery struct {
	start  time.Time
	end    time.Time
	hasEnd bool
}

func parseRange(start, end string) (rangeQuery, error) {
	s, err := ParseDate(start)
	if err != nil {
		return rangeQuery{}, fmt.Errorf("start: %w", err)
	}
	q := rangeQuery{start: s}
	if end == "" {
		return q, nil
	}
	e, err := ParseDate(end)
	if err != nil {
		return rangeQuery{}, fmt.Errorf("end: %w", err)
	}
	q.end, q.hasEnd = e, true
	return q, nil
}

func (q rangeQuery) window(latest time.Time) types.Window {
	end := latest
	if q.hasEnd {
		end = q.end
	}
	return types.Window{Start: q.start, End: end}
}
