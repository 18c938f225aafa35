package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/serenityspa/spa-platform/internal/catalog"
	"github.com/serenityspa/spa-platform/internal/events"
	"github.com/serenityspa/spa-platform/internal/observability/metrics"
	"github.com/serenityspa/spa-platform/internal/schedule"
	"github.com/serenityspa/spa-platform/pkg/logging"
)

var ledgerTracer = otel.Tracer("spa.internal.bookings")

// ServiceResolver is the slice of the catalog the ledger needs.
type ServiceResolver interface {
	Resolve(ctx context.Context, name string) (*catalog.Service, error)
}

// EventPublisher receives fire-and-forget notification events. A nil
// publisher disables dispatch.
type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, evt events.BookingConfirmedV1) error
	PublishBookingCancelled(ctx context.Context, evt events.BookingCancelledV1) error
}

// Ledger is the authoritative scheduler. Admissions for the same date are
// serialized through a per-date mutex so the overlap check and the insert
// behave as one unit; admissions for different dates never contend.
type Ledger struct {
	store     Store
	catalog   ServiceResolver
	calendar  *schedule.Calendar
	publisher EventPublisher
	metrics   *metrics.SchedulingMetrics
	logger    *logging.Logger
	now       func() time.Time
	loc       *time.Location

	mu        sync.Mutex
	dateLocks map[string]*dateLock
}

// dateLock serializes one calendar date. refs counts acquirers between map
// lookup and release so an entry is never dropped out from under a waiter.
type dateLock struct {
	mu   sync.Mutex
	refs int
}

// LedgerOption customizes ledger construction.
type LedgerOption func(*Ledger)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithPublisher wires the notification event publisher.
func WithPublisher(p EventPublisher) LedgerOption {
	return func(l *Ledger) { l.publisher = p }
}

// WithMetrics wires prometheus collectors.
func WithMetrics(m *metrics.SchedulingMetrics) LedgerOption {
	return func(l *Ledger) { l.metrics = m }
}

// WithLocation sets the timezone booking wall-times are anchored in. The
// future check and event timestamps both interpret "14:00 on a date" as
// 14:00 at the spa, not 14:00 UTC.
func WithLocation(loc *time.Location) LedgerOption {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// NewLedger constructs the booking ledger.
func NewLedger(store Store, cat ServiceResolver, cal *schedule.Calendar, logger *logging.Logger, opts ...LedgerOption) *Ledger {
	if store == nil {
		panic("bookings: store required")
	}
	if cat == nil {
		panic("bookings: catalog required")
	}
	if cal == nil {
		panic("bookings: calendar required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	l := &Ledger{
		store:     store,
		catalog:   cat,
		calendar:  cal,
		logger:    logger,
		now:       func() time.Time { return time.Now() },
		loc:       time.UTC,
		dateLocks: make(map[string]*dateLock),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// lockDate acquires exclusivity for one calendar date and returns the
// release func. Releasing the last holder of a date already behind the
// spa-local today drops its entry, so the map stays bounded by live dates.
func (l *Ledger) lockDate(date time.Time) (unlock func()) {
	key := DateKey(date)
	l.mu.Lock()
	e, ok := l.dateLocks[key]
	if !ok {
		e = &dateLock{}
		l.dateLocks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 && key < DateKey(l.now().In(l.loc)) {
			delete(l.dateLocks, key)
		}
		l.mu.Unlock()
	}
}

// Admit runs the admission protocol: resolve, validate, and atomically
// conflict-check-and-insert. On success the booking is confirmed and a
// BookingConfirmed event is dispatched asynchronously.
func (l *Ledger) Admit(ctx context.Context, req AdmitRequest) (*Booking, error) {
	ctx, span := ledgerTracer.Start(ctx, "bookings.admit")
	defer span.End()
	span.SetAttributes(
		attribute.String("spa.service_name", req.ServiceName),
		attribute.String("spa.date", DateKey(req.Date)),
	)

	started := l.now()
	booking, err := l.admit(ctx, req)
	l.metrics.ObserveAdmission(admissionOutcome(err), l.now().Sub(started).Seconds())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	l.logger.Info("booking confirmed",
		"booking_id", booking.ID,
		"service", booking.ServiceName,
		"date", DateKey(booking.Date),
		"start", booking.Start.String(),
	)
	l.dispatchConfirmed(booking)
	return booking, nil
}

func (l *Ledger) admit(ctx context.Context, req AdmitRequest) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	svc, err := l.catalog.Resolve(ctx, req.ServiceName)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("bookings: resolve service: %w", err)
	}

	startsAt := req.Start.AtIn(req.Date, l.loc)
	if !startsAt.After(l.now()) {
		return nil, ErrPastOrPresent
	}

	if !l.calendar.Admissible(req.Date, req.Start, svc.DurationMinutes) {
		return nil, ErrOutsideHours
	}

	code, err := NewConfirmationCode()
	if err != nil {
		return nil, err
	}
	now := l.now().UTC()
	booking := &Booking{
		ID:               uuid.New().String(),
		ClientName:       req.ClientName,
		ClientEmail:      req.ClientEmail,
		ClientPhone:      req.ClientPhone,
		ServiceID:        svc.ID,
		ServiceName:      svc.Name,
		DurationMinutes:  svc.DurationMinutes,
		Date:             req.Date,
		Start:            req.Start,
		Price:            svc.Price,
		Status:           StatusConfirmed,
		Note:             req.Note,
		ConfirmationCode: code,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Critical section: the overlap check must look at ledger state observed
	// after acquiring exclusivity, and the insert must happen before anyone
	// else for this date can look again.
	unlock := l.lockDate(req.Date)
	defer unlock()

	existing, err := l.store.BookingsOnDate(ctx, req.Date, []Status{StatusCancelled})
	if err != nil {
		return nil, err
	}
	interval := booking.Interval()
	for _, other := range existing {
		if interval.Overlaps(other.Interval()) {
			return nil, ErrSlotConflict
		}
	}

	if err := l.store.Insert(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// AvailableSlots lists suggestible start times for a service on a date. The
// answer is advisory: it never reserves anything and may be stale by the time
// the client submits.
func (l *Ledger) AvailableSlots(ctx context.Context, date time.Time, serviceName string) ([]schedule.TimeOfDay, error) {
	svc, err := l.catalog.Resolve(ctx, serviceName)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("bookings: resolve service: %w", err)
	}

	existing, err := l.store.BookingsOnDate(ctx, date, []Status{StatusCancelled})
	if err != nil {
		return nil, err
	}
	l.metrics.ObserveSlotQuery()
	return l.calendar.CandidateSlots(date, svc.DurationMinutes, BlockingIntervals(existing)), nil
}

// Get returns a read-only projection of one booking.
func (l *Ledger) Get(ctx context.Context, id string) (*Booking, error) {
	return l.store.GetByID(ctx, id)
}

// Cancel moves a booking to cancelled. It takes the same per-date lock as
// Admit so a cancellation can never interleave with an admission that is
// reading the booking being cancelled.
func (l *Ledger) Cancel(ctx context.Context, id string) (*Booking, error) {
	booking, err := l.transition(ctx, id, StatusCancelled)
	if err != nil {
		return nil, err
	}
	l.dispatchCancelled(booking)
	return booking, nil
}

// Complete marks a delivered appointment as completed.
func (l *Ledger) Complete(ctx context.Context, id string) (*Booking, error) {
	return l.transition(ctx, id, StatusCompleted)
}

func (l *Ledger) transition(ctx context.Context, id string, target Status) (*Booking, error) {
	current, err := l.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := l.lockDate(current.Date)
	defer unlock()

	// Re-read under the lock; the status may have moved since the first look.
	current, err = l.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, target)
	}

	updated, err := l.store.UpdateStatus(ctx, id, target, l.now().UTC())
	if err != nil {
		return nil, err
	}
	l.metrics.ObserveLifecycle(string(target))
	l.logger.Info("booking transitioned",
		"booking_id", id,
		"from", current.Status,
		"to", target,
	)
	return updated, nil
}

// dispatchConfirmed publishes the confirmation event without tying the
// caller to queue latency. Publish failures are logged and dropped; a
// confirmed booking is never rolled back over a notification.
func (l *Ledger) dispatchConfirmed(b *Booking) {
	if l.publisher == nil {
		return
	}
	evt := events.BookingConfirmedV1{
		BookingID:        b.ID,
		ConfirmationCode: b.ConfirmationCode,
		ClientName:       b.ClientName,
		ClientEmail:      b.ClientEmail,
		ClientPhone:      b.ClientPhone,
		ServiceName:      b.ServiceName,
		ScheduledFor:     b.StartsAt(l.loc),
		DurationMinutes:  b.DurationMinutes,
		Price:            b.Price,
		Note:             b.Note,
		ConfirmedAt:      b.CreatedAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := l.publisher.PublishBookingConfirmed(ctx, evt); err != nil {
			l.logger.Error("failed to publish booking confirmed event", "error", err, "booking_id", b.ID)
		}
	}()
}

func (l *Ledger) dispatchCancelled(b *Booking) {
	if l.publisher == nil {
		return
	}
	evt := events.BookingCancelledV1{
		BookingID:    b.ID,
		ClientName:   b.ClientName,
		ClientEmail:  b.ClientEmail,
		ServiceName:  b.ServiceName,
		ScheduledFor: b.StartsAt(l.loc),
		CancelledAt:  b.UpdatedAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := l.publisher.PublishBookingCancelled(ctx, evt); err != nil {
			l.logger.Error("failed to publish booking cancelled event", "error", err, "booking_id", b.ID)
		}
	}()
}

func admissionOutcome(err error) string {
	switch {
	case err == nil:
		return "confirmed"
	case errors.Is(err, ErrServiceNotFound):
		return "unknown_service"
	case errors.Is(err, ErrPastOrPresent):
		return "past_or_present"
	case errors.Is(err, ErrOutsideHours):
		return "outside_hours"
	case errors.Is(err, ErrSlotConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidClient):
		return "invalid_client"
	default:
		return "error"
	}
}
