package aggregate

import (
	"fmt"
	"time"
)

// RangeError reports a date range whose start is after its end.
type RangeError struct {
	From time.Time
	To   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: from %s is after to %s", e.From.Format("2006-01-02"), e.To.Format("2006-01-02"))
}

// Range is a closed interval of whole days: From at 00:00:00 and To at the
// last nanosecond of its day, both in the location of the inputs.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewRange truncates from to the start of its day and to to the end of its
// day. It fails with *RangeError when from falls after to.
func NewRange(from, to time.Time) (Range, error) {
	r := Range{From: StartOfDay(from), To: EndOfDay(to)}
	if r.From.After(r.To) {
		return Range{}, &RangeError{From: from, To: to}
	}
	return r, nil
}

// Validate re-checks a Range built by hand.
func (r Range) Validate() error {
	if r.From.After(r.To) {
		return &RangeError{From: r.From, To: r.To}
	}
	return nil
}

// Contains reports whether t lies inside the closed interval.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Days returns the number of calendar days covered, counting both ends.
func (r Range) Days() int {
	return DaysBetween(r.From, r.To) + 1
}

// Label renders the range for titles, e.g. "2024-03-01 – 2024-03-31".
func (r Range) Label() string {
	if DaysBetween(r.From, r.To) == 0 {
		return r.From.Format("2006-01-02")
	}
	return r.From.Format("2006-01-02") + " – " + r.To.Format("2006-01-02")
}

func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

/*
DaysBetween returns the number of calendar days from a to b, comparing the
civil dates only (time of day and DST shifts are ignored). It is negative
when b is before a.
*/
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	civilA := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	civilB := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(civilB.Sub(civilA).Hours() / 24)
}
