package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/serenityspa/spa-platform/internal/schedule"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

var bookingColumnNames = []string{
	"id", "client_name", "client_email", "client_phone", "service_id", "service_name",
	"duration_minutes", "appointment_date", "start_minute", "price", "status", "note",
	"confirmation_code", "calendar_event_ref", "created_at", "updated_at",
}

func sampleBooking() *Booking {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return &Booking{
		ID:               "bk-1",
		ClientName:       "Dana Reyes",
		ClientEmail:      "dana@example.com",
		ServiceID:        "svc-1",
		ServiceName:      "Swedish Massage",
		DurationMinutes:  60,
		Date:             time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		Start:            schedule.MustTimeOfDay("10:00"),
		Price:            80.0,
		Status:           StatusConfirmed,
		ConfirmationCode: "ABCDEFGHJK",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestPostgresInsert(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStoreWithDB(mock)

	b := sampleBooking()
	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(b.ID, b.ClientName, b.ClientEmail, b.ClientPhone, b.ServiceID,
			b.ServiceName, b.DurationMinutes, b.Date, 600, b.Price,
			"confirmed", b.Note, b.ConfirmationCode, b.CalendarEventRef,
			b.CreatedAt, b.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := store.Insert(context.Background(), b); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPostgresInsertExclusionViolation(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStoreWithDB(mock)

	mock.ExpectExec(`INSERT INTO bookings`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23P01"})

	if err := store.Insert(context.Background(), sampleBooking()); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected ErrSlotConflict, got %v", err)
	}
}

func TestPostgresInsertConnectionFailure(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStoreWithDB(mock)

	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnError(errors.New("connection refused"))

	if err := store.Insert(context.Background(), sampleBooking()); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestPostgresBookingsOnDate(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStoreWithDB(mock)

	b := sampleBooking()
	rows := pgxmock.NewRows(bookingColumnNames).
		AddRow(b.ID, b.ClientName, b.ClientEmail, b.ClientPhone, b.ServiceID,
			b.ServiceName, b.DurationMinutes, b.Date, 600, b.Price,
			"confirmed", b.Note, b.ConfirmationCode, b.CalendarEventRef,
			b.CreatedAt, b.UpdatedAt)
	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(b.Date, []string{"cancelled"}).
		WillReturnRows(rows)

	got, err := store.BookingsOnDate(context.Background(), b.Date, []Status{StatusCancelled})
	if err != nil {
		t.Fatalf("BookingsOnDate: %v", err)
	}
	if len(got) != 1 || got[0].Start != schedule.MustTimeOfDay("10:00") {
		t.Fatalf("unexpected bookings: %+v", got)
	}
}

func TestPostgresUpdateStatusMissing(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStoreWithDB(mock)

	mock.ExpectQuery(`UPDATE bookings`).
		WithArgs("missing-id", "cancelled", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.UpdateStatus(context.Background(), "missing-id", StatusCancelled, time.Now())
	if !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestPostgresGetByID(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStoreWithDB(mock)

	b := sampleBooking()
	rows := pgxmock.NewRows(bookingColumnNames).
		AddRow(b.ID, b.ClientName, b.ClientEmail, b.ClientPhone, b.ServiceID,
			b.ServiceName, b.DurationMinutes, b.Date, 600, b.Price,
			"confirmed", b.Note, b.ConfirmationCode, b.CalendarEventRef,
			b.CreatedAt, b.UpdatedAt)
	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs("bk-1").
		WillReturnRows(rows)

	got, err := store.GetByID(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ConfirmationCode != "ABCDEFGHJK" || got.Status != StatusConfirmed {
		t.Fatalf("unexpected booking: %+v", got)
	}
}

func TestPostgresGetByIDMissing(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStoreWithDB(mock)

	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	if _, err := store.GetByID(context.Background(), "missing-id"); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}
