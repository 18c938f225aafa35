// Package spa provides the spa's business profile and its persistence.
package spa

import (
	"fmt"
	"time"

	"github.com/serenityspa/spa-platform/internal/config"
	"github.com/serenityspa/spa-platform/internal/schedule"
)

// DayHours represents the opening hours for a single day.
// Nil means the spa is closed that day.
type DayHours struct {
	Open  string `json:"open"`  // "09:00" in 24-hour format
	Close string `json:"close"` // "20:00" in 24-hour format
}

// BusinessHours maps day names to their hours.
type BusinessHours struct {
	Monday    *DayHours `json:"monday,omitempty"`
	Tuesday   *DayHours `json:"tuesday,omitempty"`
	Wednesday *DayHours `json:"wednesday,omitempty"`
	Thursday  *DayHours `json:"thursday,omitempty"`
	Friday    *DayHours `json:"friday,omitempty"`
	Saturday  *DayHours `json:"saturday,omitempty"`
	Sunday    *DayHours `json:"sunday,omitempty"`
}

// ForDay returns the hours for a given weekday.
func (b *BusinessHours) ForDay(weekday time.Weekday) *DayHours {
	switch weekday {
	case time.Sunday:
		return b.Sunday
	case time.Monday:
		return b.Monday
	case time.Tuesday:
		return b.Tuesday
	case time.Wednesday:
		return b.Wednesday
	case time.Thursday:
		return b.Thursday
	case time.Friday:
		return b.Friday
	case time.Saturday:
		return b.Saturday
	default:
		return nil
	}
}

// Profile holds the spa's identity and scheduling policy. Confirmation emails
// and manager alerts render from it, and the booking calendar is derived
// from its hours.
type Profile struct {
	Name               string        `json:"name"`
	Address            string        `json:"address,omitempty"`
	Phone              string        `json:"phone,omitempty"`
	ManagerEmail       string        `json:"manager_email,omitempty"`
	Timezone           string        `json:"timezone"` // e.g., "America/New_York"
	BusinessHours      BusinessHours `json:"business_hours"`
	BufferMinutes      int           `json:"buffer_minutes"`
	GranularityMinutes int           `json:"granularity_minutes"`
}

// DefaultProfile returns the stock spa profile.
func DefaultProfile() *Profile {
	weekday := &DayHours{Open: "09:00", Close: "20:00"}
	return &Profile{
		Name:         "Luxury Spa & Wellness",
		Address:      "123 Wellness Street, City, State 12345",
		Phone:        "+1 (555) 123-4567",
		ManagerEmail: "manager@yourspa.com",
		Timezone:     "America/New_York",
		BusinessHours: BusinessHours{
			Monday:    weekday,
			Tuesday:   weekday,
			Wednesday: weekday,
			Thursday:  weekday,
			Friday:    weekday,
			Saturday:  &DayHours{Open: "10:00", Close: "18:00"},
			Sunday:    &DayHours{Open: "10:00", Close: "16:00"},
		},
		BufferMinutes:      15,
		GranularityMinutes: 15,
	}
}

// ProfileFromConfig builds the default profile with identity and scheduling
// knobs taken from the environment.
func ProfileFromConfig(cfg *config.Config) *Profile {
	p := DefaultProfile()
	if cfg == nil {
		return p
	}
	if cfg.SpaName != "" {
		p.Name = cfg.SpaName
	}
	if cfg.SpaAddress != "" {
		p.Address = cfg.SpaAddress
	}
	if cfg.SpaPhone != "" {
		p.Phone = cfg.SpaPhone
	}
	if cfg.SpaManagerEmail != "" {
		p.ManagerEmail = cfg.SpaManagerEmail
	}
	if cfg.SpaTimezone != "" {
		p.Timezone = cfg.SpaTimezone
	}
	if cfg.BufferMinutes >= 0 {
		p.BufferMinutes = cfg.BufferMinutes
	}
	if cfg.SlotGranularityMinutes > 0 {
		p.GranularityMinutes = cfg.SlotGranularityMinutes
	}
	return p
}

// Location resolves the spa's timezone, falling back to UTC.
func (p *Profile) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Calendar derives the operating calendar the scheduler consumes. Days
// without hours are closed.
func (p *Profile) Calendar() (*schedule.Calendar, error) {
	windows := make(map[time.Weekday]schedule.Window)
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours := p.BusinessHours.ForDay(day)
		if hours == nil {
			continue
		}
		open, err := schedule.ParseTimeOfDay(hours.Open)
		if err != nil {
			return nil, fmt.Errorf("spa: %s open time: %w", day, err)
		}
		close, err := schedule.ParseTimeOfDay(hours.Close)
		if err != nil {
			return nil, fmt.Errorf("spa: %s close time: %w", day, err)
		}
		windows[day] = schedule.Window{Open: open, Close: close}
	}
	return schedule.NewCalendar(windows, p.BufferMinutes, p.GranularityMinutes)
}
