package schedule

import "time"

// CandidateSlots computes the ascending list of suggestible start times for a
// booking of durationMinutes on the given date, skipping anything that would
// overlap an existing interval.
//
// Candidates advance by granularity+buffer so suggestions keep breathing room
// between appointments. The overlap test itself uses only the raw duration:
// buffer is a spacing policy, not a conflict rule, so a start that exactly
// abuts an existing booking is still admissible even when it is never
// suggested here.
func (c *Calendar) CandidateSlots(date time.Time, durationMinutes int, existing []Interval) []TimeOfDay {
	if durationMinutes <= 0 {
		return nil
	}
	window, open := c.WindowFor(date.Weekday())
	if !open {
		return nil
	}
	latestStart := window.Close.Add(-durationMinutes)
	if latestStart < window.Open {
		return nil
	}

	step := c.granularityMinutes + c.bufferMinutes
	var slots []TimeOfDay
	for start := window.Open; start <= latestStart; start = start.Add(step) {
		if !NewInterval(start, durationMinutes).OverlapsAny(existing) {
			slots = append(slots, start)
		}
	}
	return slots
}

// Admissible reports whether a booking of durationMinutes starting at start is
// inside the date's operating window. Overlap against other bookings is a
// separate, ledger-owned check.
func (c *Calendar) Admissible(date time.Time, start TimeOfDay, durationMinutes int) bool {
	window, open := c.WindowFor(date.Weekday())
	if !open {
		return false
	}
	return window.Contains(NewInterval(start, durationMinutes))
}
