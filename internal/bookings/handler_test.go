package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenityspa/spa-platform/internal/catalog"
	"github.com/serenityspa/spa-platform/internal/schedule"
	"github.com/serenityspa/spa-platform/pkg/logging"
)

func newTestServer(t *testing.T) (*chi.Mux, *Ledger) {
	t.Helper()
	repo := catalog.NewInMemoryRepository()
	require.NoError(t, catalog.Seed(context.Background(), repo))
	store := NewInMemoryStore()
	ledger := NewLedger(store, repo, schedule.DefaultCalendar(), logging.Default(),
		WithClock(func() time.Time { return testNow }))
	h := NewHandler(ledger, logging.Default())

	r := chi.NewRouter()
	r.Post("/book", h.CreateBooking)
	r.Get("/available-slots", h.AvailableSlots)
	r.Get("/bookings/{bookingID}", h.GetBooking)
	r.Post("/bookings/{bookingID}/cancel", h.CancelBooking)
	r.Post("/bookings/{bookingID}/complete", h.CompleteBooking)
	return r, ledger
}

func postBook(t *testing.T, r http.Handler, payload BookingRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/book", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validRequest() BookingRequest {
	return BookingRequest{
		ClientName:      "Dana Reyes",
		ClientEmail:     "dana@example.com",
		ServiceName:     "Swedish Massage",
		AppointmentDate: "2026-03-02",
		AppointmentTime: "10:00",
		SpecialRequests: "lavender oil",
	}
}

func TestCreateBookingHappyPath(t *testing.T) {
	r, _ := newTestServer(t)

	w := postBook(t, r, validRequest())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "2026-03-02", resp.AppointmentDate)
	assert.Equal(t, "10:00", resp.AppointmentTime)
	assert.Equal(t, 60, resp.ServiceDuration)
	assert.Equal(t, 80.00, resp.TotalPrice)
	assert.Len(t, resp.ConfirmationCode, 10)
	assert.Equal(t, "lavender oil", resp.SpecialRequests)
}

func TestCreateBookingErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*BookingRequest)
		wantCode int
	}{
		{
			name:     "unknown service",
			mutate:   func(r *BookingRequest) { r.ServiceName = "Crystal Healing" },
			wantCode: http.StatusNotFound,
		},
		{
			name:     "missing client name",
			mutate:   func(r *BookingRequest) { r.ClientName = "" },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad date format",
			mutate:   func(r *BookingRequest) { r.AppointmentDate = "03/02/2026" },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad time format",
			mutate:   func(r *BookingRequest) { r.AppointmentTime = "10am" },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "past date",
			mutate:   func(r *BookingRequest) { r.AppointmentDate = "2020-01-06" },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "outside hours",
			mutate:   func(r *BookingRequest) { r.AppointmentTime = "19:30" },
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestServer(t)
			req := validRequest()
			tt.mutate(&req)
			w := postBook(t, r, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestCreateBookingConflict(t *testing.T) {
	r, _ := newTestServer(t)

	require.Equal(t, http.StatusCreated, postBook(t, r, validRequest()).Code)

	second := validRequest()
	second.AppointmentTime = "10:30"
	assert.Equal(t, http.StatusConflict, postBook(t, r, second).Code)
}

func TestCreateBookingInvalidJSON(t *testing.T) {
	r, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/book", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailableSlotsEndpoint(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/available-slots?date=2026-03-02&service_name=Swedish+Massage", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-02", resp.Date)
	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, "09:00", resp.Slots[0])
}

func TestAvailableSlotsValidation(t *testing.T) {
	r, _ := newTestServer(t)

	for _, url := range []string{
		"/available-slots",
		"/available-slots?date=2026-03-02",
		"/available-slots?date=bad&service_name=Swedish+Massage",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "url %s", url)
	}

	req := httptest.NewRequest(http.MethodGet, "/available-slots?date=2026-03-02&service_name=Crystal+Healing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingLifecycleEndpoints(t *testing.T) {
	r, _ := newTestServer(t)

	w := postBook(t, r, validRequest())
	require.Equal(t, http.StatusCreated, w.Code)
	var created BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Lookup round-trips the stored booking.
	req := httptest.NewRequest(http.MethodGet, "/bookings/"+created.ID, nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)

	// Cancel succeeds once, conflicts after.
	req = httptest.NewRequest(http.MethodPost, "/bookings/"+created.ID+"/cancel", nil)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, req)
	require.Equal(t, http.StatusOK, w3.Code)
	var cancelled BookingResponse
	require.NoError(t, json.Unmarshal(w3.Body.Bytes(), &cancelled))
	assert.Equal(t, "cancelled", cancelled.Status)

	req = httptest.NewRequest(http.MethodPost, "/bookings/"+created.ID+"/cancel", nil)
	w4 := httptest.NewRecorder()
	r.ServeHTTP(w4, req)
	assert.Equal(t, http.StatusConflict, w4.Code)

	req = httptest.NewRequest(http.MethodPost, "/bookings/"+created.ID+"/complete", nil)
	w5 := httptest.NewRecorder()
	r.ServeHTTP(w5, req)
	assert.Equal(t, http.StatusConflict, w5.Code)
}

func TestBookingNotFound(t *testing.T) {
	r, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/bookings/ghost", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
