package bookings

import "errors"

// Every rejection is a distinct sentinel so callers can re-prompt
// meaningfully; none of these are retried by the ledger.
var (
	// ErrServiceNotFound is returned when the requested service does not
	// resolve to an active catalog entry
	ErrServiceNotFound = errors.New("service not found")

	// ErrPastOrPresent is returned when the requested start is not strictly
	// in the future
	ErrPastOrPresent = errors.New("appointment must be in the future")

	// ErrOutsideHours is returned when the requested interval does not fit
	// the day's operating window
	ErrOutsideHours = errors.New("spa is closed at that time")

	// ErrSlotConflict is returned when the requested interval overlaps an
	// existing non-cancelled booking
	ErrSlotConflict = errors.New("time slot is already booked")

	// ErrBookingNotFound is returned when a booking lookup misses
	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned on an illegal lifecycle move
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrInvalidClient is returned when client contact details are missing
	ErrInvalidClient = errors.New("client name and email or phone are required")

	// ErrStorageUnavailable is surfaced by storage adapters after their own
	// transient retries are exhausted
	ErrStorageUnavailable = errors.New("booking storage unavailable")
)
