package model

import "time"

// Interval is a half-open time range [Start, End).  The end instant is
// not part of the interval, so two intervals that merely touch (one ends
// exactly when the other starts) do not overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether i and other share at least one instant.
// [a, b) and [c, d) overlap iff a < d and c < b.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether t falls inside the interval.
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Duration returns End - Start.  It is negative for inverted intervals.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}
