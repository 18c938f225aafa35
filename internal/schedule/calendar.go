package schedule

import (
	"fmt"
	"time"
)

// Window is an open/close pair for one weekday.
type Window struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// Contains reports whether the full interval fits inside the window.
func (w Window) Contains(i Interval) bool {
	return i.Start >= w.Open && i.End <= w.Close
}

// Calendar is the spa's operating hours plus slot spacing policy.
// Weekdays absent from the window map are closed.
type Calendar struct {
	windows            map[time.Weekday]Window
	bufferMinutes      int
	granularityMinutes int
}

// NewCalendar validates windows and builds a calendar.
func NewCalendar(windows map[time.Weekday]Window, bufferMinutes, granularityMinutes int) (*Calendar, error) {
	if bufferMinutes < 0 {
		return nil, fmt.Errorf("schedule: buffer minutes must be >= 0, got %d", bufferMinutes)
	}
	if granularityMinutes <= 0 {
		return nil, fmt.Errorf("schedule: granularity minutes must be > 0, got %d", granularityMinutes)
	}
	copied := make(map[time.Weekday]Window, len(windows))
	for day, w := range windows {
		if !w.Open.Valid() || !w.Close.Valid() {
			return nil, fmt.Errorf("schedule: %s window outside the day: %s-%s", day, w.Open, w.Close)
		}
		if w.Close <= w.Open {
			return nil, fmt.Errorf("schedule: %s window close %s not after open %s", day, w.Close, w.Open)
		}
		copied[day] = w
	}
	return &Calendar{
		windows:            copied,
		bufferMinutes:      bufferMinutes,
		granularityMinutes: granularityMinutes,
	}, nil
}

// DefaultCalendar returns the stock spa hours: weekdays 09:00-20:00,
// Saturday 10:00-18:00, Sunday 10:00-16:00, 15 minute buffer and granularity.
func DefaultCalendar() *Calendar {
	cal, err := NewCalendar(map[time.Weekday]Window{
		time.Monday:    {Open: MustTimeOfDay("09:00"), Close: MustTimeOfDay("20:00")},
		time.Tuesday:   {Open: MustTimeOfDay("09:00"), Close: MustTimeOfDay("20:00")},
		time.Wednesday: {Open: MustTimeOfDay("09:00"), Close: MustTimeOfDay("20:00")},
		time.Thursday:  {Open: MustTimeOfDay("09:00"), Close: MustTimeOfDay("20:00")},
		time.Friday:    {Open: MustTimeOfDay("09:00"), Close: MustTimeOfDay("20:00")},
		time.Saturday:  {Open: MustTimeOfDay("10:00"), Close: MustTimeOfDay("18:00")},
		time.Sunday:    {Open: MustTimeOfDay("10:00"), Close: MustTimeOfDay("16:00")},
	}, 15, 15)
	if err != nil {
		panic(err)
	}
	return cal
}

// WindowFor returns the operating window for a weekday. The second return
// value is false when the spa is closed that day.
func (c *Calendar) WindowFor(day time.Weekday) (Window, bool) {
	w, ok := c.windows[day]
	return w, ok
}

// BufferMinutes is the recommended spacing between consecutive bookings.
// It shapes slot suggestions only; admission never applies it.
func (c *Calendar) BufferMinutes() int {
	return c.bufferMinutes
}

// GranularityMinutes is the base step between candidate start times.
func (c *Calendar) GranularityMinutes() int {
	return c.granularityMinutes
}
