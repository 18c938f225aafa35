package bookings

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/serenityspa/spa-platform/internal/schedule"
)

// Store is the persistence seam for the ledger. Implementations must reject
// an Insert that would overlap a blocking booking on the same date with
// ErrSlotConflict, independently of the ledger's own serialization; the
// postgres store does this with an exclusion constraint, the in-memory store
// under its own lock.
type Store interface {
	// BookingsOnDate returns bookings for the date, excluding the given
	// statuses. Passing only StatusCancelled yields the blocking set.
	BookingsOnDate(ctx context.Context, date time.Time, exclude []Status) ([]*Booking, error)
	// Insert persists a new booking or fails with ErrSlotConflict.
	Insert(ctx context.Context, b *Booking) error
	// UpdateStatus moves a booking to the new status, bumping UpdatedAt.
	// ErrBookingNotFound when the id is unknown.
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (*Booking, error)
	// GetByID fetches a single booking.
	GetByID(ctx context.Context, id string) (*Booking, error)
}

// InMemoryStore is a Store backed by mutex-guarded maps. Used in development
// mode and as the reference implementation in tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
	byDate   map[string][]string
}

// NewInMemoryStore creates an empty in-memory ledger store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		bookings: make(map[string]*Booking),
		byDate:   make(map[string][]string),
	}
}

// Insert adds a booking, refusing overlaps with blocking bookings on the same
// date. This mirrors the database exclusion constraint so both stores give
// the same guarantee.
func (s *InMemoryStore) Insert(ctx context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := DateKey(b.Date)
	candidate := b.Interval()
	for _, id := range s.byDate[key] {
		existing := s.bookings[id]
		if !existing.Status.Blocking() {
			continue
		}
		if candidate.Overlaps(existing.Interval()) {
			return ErrSlotConflict
		}
	}

	stored := *b
	s.bookings[stored.ID] = &stored
	s.byDate[key] = append(s.byDate[key], stored.ID)
	return nil
}

// BookingsOnDate returns the date's bookings minus excluded statuses,
// ordered by start time.
func (s *InMemoryStore) BookingsOnDate(ctx context.Context, date time.Time, exclude []Status) ([]*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[Status]struct{}, len(exclude))
	for _, st := range exclude {
		excluded[st] = struct{}{}
	}

	var out []*Booking
	for _, id := range s.byDate[DateKey(date)] {
		b := s.bookings[id]
		if _, skip := excluded[b.Status]; skip {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

// UpdateStatus moves a booking to the new status.
func (s *InMemoryStore) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = updatedAt
	copied := *b
	return &copied, nil
}

// GetByID fetches a booking copy.
func (s *InMemoryStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

// BlockingIntervals projects the blocking bookings of a date onto their
// intervals, the shape the slot generator consumes.
func BlockingIntervals(bookings []*Booking) []schedule.Interval {
	var out []schedule.Interval
	for _, b := range bookings {
		if b.Status.Blocking() {
			out = append(out, b.Interval())
		}
	}
	return out
}

var _ Store = (*InMemoryStore)(nil)
