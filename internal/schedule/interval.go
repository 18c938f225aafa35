package schedule

// Interval is a half-open [Start, End) span within a single day.
type Interval struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewInterval builds the interval covering durationMinutes from start.
func NewInterval(start TimeOfDay, durationMinutes int) Interval {
	return Interval{Start: start, End: start.Add(durationMinutes)}
}

// Overlaps reports whether two half-open intervals intersect.
// Exact abutment (a.End == b.Start) is not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// OverlapsAny reports whether the interval intersects any of the given intervals.
func (i Interval) OverlapsAny(others []Interval) bool {
	for _, other := range others {
		if i.Overlaps(other) {
			return true
		}
	}
	return false
}
