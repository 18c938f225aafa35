// Package events carries the fire-and-forget notification events emitted by
// the booking ledger and the queue plumbing that moves them to workers.
package events

import "time"

// BookingConfirmedV1 is emitted after a successful admission. Consumers send
// confirmation email and sync external systems; none of that can affect the
// already-committed booking.
type BookingConfirmedV1 struct {
	EventID          string    `json:"event_id"`
	BookingID        string    `json:"booking_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	ClientName       string    `json:"client_name"`
	ClientEmail      string    `json:"client_email"`
	ClientPhone      string    `json:"client_phone,omitempty"`
	ServiceName      string    `json:"service_name"`
	ScheduledFor     time.Time `json:"scheduled_for"`
	DurationMinutes  int       `json:"duration_minutes"`
	Price            float64   `json:"price"`
	Note             string    `json:"note,omitempty"`
	ConfirmedAt      time.Time `json:"confirmed_at"`
}

// BookingCancelledV1 is emitted after a cancellation.
type BookingCancelledV1 struct {
	EventID      string    `json:"event_id"`
	BookingID    string    `json:"booking_id"`
	ClientName   string    `json:"client_name"`
	ClientEmail  string    `json:"client_email"`
	ServiceName  string    `json:"service_name"`
	ScheduledFor time.Time `json:"scheduled_for"`
	CancelledAt  time.Time `json:"cancelled_at"`
}
