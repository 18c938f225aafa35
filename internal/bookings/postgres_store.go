package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenityspa/spa-platform/internal/schedule"
)

// DB is the subset of pgxpool.Pool the store needs; tests substitute a
// pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists bookings in the relational database. The bookings
// table carries an exclusion constraint over (date, occupied minute range)
// for blocking statuses, so the second of two racing inserts fails at the
// storage layer no matter what the application does.
type PostgresStore struct {
	db DB
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresStore{db: pool}
}

// NewPostgresStoreWithDB allows injecting a mock connection for tests.
func NewPostgresStoreWithDB(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const bookingColumns = `id, client_name, client_email, client_phone, service_id, service_name,
		duration_minutes, appointment_date, start_minute, price, status, note,
		confirmation_code, calendar_event_ref, created_at, updated_at`

// Insert persists a booking. An exclusion constraint violation is reported as
// ErrSlotConflict; anything else non-semantic as ErrStorageUnavailable.
func (s *PostgresStore) Insert(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (id, client_name, client_email, client_phone, service_id,
			service_name, duration_minutes, appointment_date, start_minute, price,
			status, note, confirmation_code, calendar_event_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.db.Exec(ctx, query,
		b.ID,
		b.ClientName,
		b.ClientEmail,
		b.ClientPhone,
		b.ServiceID,
		b.ServiceName,
		b.DurationMinutes,
		b.Date,
		int(b.Start),
		b.Price,
		string(b.Status),
		b.Note,
		b.ConfirmationCode,
		b.CalendarEventRef,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// 23P01 exclusion_violation: another blocking booking occupies
			// an overlapping range on the same date.
			if pgErr.Code == "23P01" {
				return ErrSlotConflict
			}
			return fmt.Errorf("bookings: insert failed: %w", err)
		}
		return fmt.Errorf("%w: insert: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// BookingsOnDate returns the date's bookings minus excluded statuses.
func (s *PostgresStore) BookingsOnDate(ctx context.Context, date time.Time, exclude []Status) ([]*Booking, error) {
	excluded := make([]string, 0, len(exclude))
	for _, st := range exclude {
		excluded = append(excluded, string(st))
	}
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE appointment_date = $1 AND NOT (status = ANY($2))
		ORDER BY start_minute
	`
	rows, err := s.db.Query(ctx, query, date, excluded)
	if err != nil {
		return nil, fmt.Errorf("%w: select by date: %v", ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrStorageUnavailable, err)
	}
	return out, nil
}

// UpdateStatus moves a booking to the new status.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (*Booking, error) {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + bookingColumns + `
	`
	b, err := scanBooking(s.db.QueryRow(ctx, query, id, string(status), updatedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByID fetches a single booking.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`
	b, err := scanBooking(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var (
		b           Booking
		startMinute int
		status      string
	)
	err := row.Scan(
		&b.ID,
		&b.ClientName,
		&b.ClientEmail,
		&b.ClientPhone,
		&b.ServiceID,
		&b.ServiceName,
		&b.DurationMinutes,
		&b.Date,
		&startMinute,
		&b.Price,
		&status,
		&b.Note,
		&b.ConfirmationCode,
		&b.CalendarEventRef,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("bookings: scan failed: %w", err)
	}
	b.Start = schedule.TimeOfDay(startMinute)
	b.Status = Status(status)
	return &b, nil
}

var _ Store = (*PostgresStore)(nil)
