// Package period decomposes date intervals into reporting sub-periods.
// Planning is pure: the same inputs always yield the same periods.
package period

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod is returned when a period's start is not before its end.
var ErrInvalidPeriod = errors.New("period start must be before end")

// ErrInvalidStep is returned when a daily step size is not positive.
var ErrInvalidStep = errors.New("step must be at least one day")

// Period is a half-open [Start, End) interval.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

// Contains reports whether t falls inside the half-open interval.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Lookback returns the period immediately preceding p, of identical length.
func (p Period) Lookback() Period {
	d := p.End.Sub(p.Start)
	return Period{Start: p.Start.Add(-d), End: p.Start}
}

// Valid reports whether the period is non-degenerate.
func (p Period) Valid() bool {
	return p.Start.Before(p.End)
}

// Exact returns the single period [start, end) unchanged.
func Exact(start, end time.Time) ([]Period, error) {
	if !start.Before(end) {
		return nil, ErrInvalidPeriod
	}
	return []Period{{Start: start, End: end}}, nil
}

// Monthly splits [start, end) into true calendar months. The start date is
// normalized to the first day of its month, and the last period runs to the
// end of its month even when that overshoots end.
func Monthly(start, end time.Time) ([]Period, error) {
	if !start.Before(end) {
		return nil, ErrInvalidPeriod
	}

	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	var periods []Period
	for cursor.Before(end) {
		next := cursor.AddDate(0, 1, 0)
		periods = append(periods, Period{Start: cursor, End: next})
		cursor = next
	}
	return periods, nil
}

// Daily splits [start, end) into fixed periods of stepDays days. The last
// period may extend past end; it is not clipped.
func Daily(start, end time.Time, stepDays int) ([]Period, error) {
	if !start.Before(end) {
		return nil, ErrInvalidPeriod
	}
	if stepDays < 1 {
		return nil, ErrInvalidStep
	}

	cursor := start
	var periods []Period
	for cursor.Before(end) {
		next := cursor.AddDate(0, 0, stepDays)
		periods = append(periods, Period{Start: cursor, End: next})
		cursor = next
	}
	return periods, nil
}
