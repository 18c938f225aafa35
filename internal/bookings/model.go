// Package bookings owns the reservation ledger: the authoritative store of
// accepted appointments and the admission protocol that keeps them
// conflict-free under concurrent requests.
package bookings

import (
	"strings"
	"time"

	"github.com/serenityspa/spa-platform/internal/schedule"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	// StatusPending is reserved for future asynchronous confirmation flows;
	// the current admission protocol confirms synchronously and never parks
	// a booking here.
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Blocking reports whether a booking in this status still occupies its slot.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo encodes the legal lifecycle moves:
// pending -> confirmed/cancelled, confirmed -> completed/cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// Booking is the canonical record of an accepted appointment. The ledger owns
// the canonical copy; everything else sees read-only projections. Duration
// and price are frozen at admit time, so later catalog edits never rewrite
// history.
type Booking struct {
	ID               string              `json:"id"`
	ClientName       string              `json:"client_name"`
	ClientEmail      string              `json:"client_email"`
	ClientPhone      string              `json:"client_phone"`
	ServiceID        string              `json:"service_id"`
	ServiceName      string              `json:"service_name"`
	DurationMinutes  int                 `json:"service_duration"`
	Date             time.Time           `json:"appointment_date"`
	Start            schedule.TimeOfDay  `json:"appointment_time"`
	Price            float64             `json:"total_price"`
	Status           Status              `json:"status"`
	Note             string              `json:"special_requests,omitempty"`
	ConfirmationCode string              `json:"confirmation_code"`
	CalendarEventRef string              `json:"calendar_event_ref,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// Interval is the half-open span the booking occupies on its date.
func (b *Booking) Interval() schedule.Interval {
	return schedule.NewInterval(b.Start, b.DurationMinutes)
}

// StartsAt anchors the booking on its date as an instant in loc. Booking
// times are wall-clock times at the spa, so callers pass the spa's location.
func (b *Booking) StartsAt(loc *time.Location) time.Time {
	return b.Start.AtIn(b.Date, loc)
}

// AdmitRequest is a booking attempt as delivered by the inbound surface.
type AdmitRequest struct {
	ClientName  string
	ClientEmail string
	ClientPhone string
	ServiceName string
	Date        time.Time
	Start       schedule.TimeOfDay
	Note        string
}

// Validate checks the client-supplied fields before any scheduling work.
func (r *AdmitRequest) Validate() error {
	if strings.TrimSpace(r.ClientName) == "" {
		return ErrInvalidClient
	}
	if r.ClientEmail == "" && r.ClientPhone == "" {
		return ErrInvalidClient
	}
	if strings.TrimSpace(r.ServiceName) == "" {
		return ErrServiceNotFound
	}
	return nil
}

// DateKey normalizes a date to its per-day partition key.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
