package bookings

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/serenityspa/spa-platform/internal/schedule"
	"github.com/serenityspa/spa-platform/pkg/logging"
)

// Handler exposes the booking ledger over HTTP.
type Handler struct {
	ledger *Ledger
	logger *logging.Logger
}

// NewHandler creates a new bookings handler.
func NewHandler(ledger *Ledger, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		ledger: ledger,
		logger: logger,
	}
}

// BookingRequest is the inbound payload for POST /book.
type BookingRequest struct {
	ClientName      string `json:"client_name"`
	ClientEmail     string `json:"client_email"`
	ClientPhone     string `json:"client_phone"`
	ServiceName     string `json:"service_name"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	SpecialRequests string `json:"special_requests"`
}

// BookingResponse is the outbound projection of a booking.
type BookingResponse struct {
	ID               string  `json:"id"`
	ClientName       string  `json:"client_name"`
	ServiceName      string  `json:"service_name"`
	ServiceDuration  int     `json:"service_duration"`
	AppointmentDate  string  `json:"appointment_date"`
	AppointmentTime  string  `json:"appointment_time"`
	TotalPrice       float64 `json:"total_price"`
	Status           string  `json:"status"`
	SpecialRequests  string  `json:"special_requests,omitempty"`
	ConfirmationCode string  `json:"confirmation_code"`
	CreatedAt        string  `json:"created_at"`
}

func toBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		ClientName:       b.ClientName,
		ServiceName:      b.ServiceName,
		ServiceDuration:  b.DurationMinutes,
		AppointmentDate:  DateKey(b.Date),
		AppointmentTime:  b.Start.String(),
		TotalPrice:       b.Price,
		Status:           string(b.Status),
		SpecialRequests:  b.Note,
		ConfirmationCode: b.ConfirmationCode,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
	}
}

// AvailableSlotsResponse is the outbound payload for GET /available-slots.
type AvailableSlotsResponse struct {
	Date        string   `json:"date"`
	ServiceName string   `json:"service_name"`
	Slots       []string `json:"available_slots"`
}

// CreateBooking handles POST /book requests.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", req.AppointmentDate)
	if err != nil {
		http.Error(w, "invalid appointment_date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	start, err := schedule.ParseTimeOfDay(req.AppointmentTime)
	if err != nil {
		http.Error(w, "invalid appointment_time, expected HH:MM", http.StatusBadRequest)
		return
	}

	booking, err := h.ledger.Admit(r.Context(), AdmitRequest{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		ServiceName: req.ServiceName,
		Date:        date,
		Start:       start,
		Note:        req.SpecialRequests,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

// AvailableSlots handles GET /available-slots?date=YYYY-MM-DD&service_name=...
func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	dateParam := r.URL.Query().Get("date")
	serviceName := r.URL.Query().Get("service_name")
	if dateParam == "" || serviceName == "" {
		http.Error(w, "date and service_name are required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	slots, err := h.ledger.AvailableSlots(r.Context(), date, serviceName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	formatted := make([]string, 0, len(slots))
	for _, s := range slots {
		formatted = append(formatted, s.String())
	}
	writeJSON(w, http.StatusOK, AvailableSlotsResponse{
		Date:        dateParam,
		ServiceName: serviceName,
		Slots:       formatted,
	})
}

// GetBooking handles GET /bookings/{bookingID} requests.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")
	if id == "" {
		http.Error(w, "missing booking id", http.StatusBadRequest)
		return
	}

	booking, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

// CancelBooking handles POST /bookings/{bookingID}/cancel requests.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")
	if id == "" {
		http.Error(w, "missing booking id", http.StatusBadRequest)
		return
	}

	booking, err := h.ledger.Cancel(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

// CompleteBooking handles POST /admin/bookings/{bookingID}/complete requests.
func (h *Handler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingID")
	if id == "" {
		http.Error(w, "missing booking id", http.StatusBadRequest)
		return
	}

	booking, err := h.ledger.Complete(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrServiceNotFound):
		http.Error(w, "Service not found", http.StatusNotFound)
	case errors.Is(err, ErrBookingNotFound):
		http.Error(w, "Booking not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidClient):
		http.Error(w, "client_name and a contact (email or phone) are required", http.StatusBadRequest)
	case errors.Is(err, ErrPastOrPresent):
		http.Error(w, "appointment must be in the future", http.StatusBadRequest)
	case errors.Is(err, ErrOutsideHours):
		http.Error(w, "requested time is outside operating hours", http.StatusBadRequest)
	case errors.Is(err, ErrSlotConflict):
		http.Error(w, "requested time is no longer available", http.StatusConflict)
	case errors.Is(err, ErrInvalidTransition):
		http.Error(w, "booking cannot change to that status", http.StatusConflict)
	case errors.Is(err, ErrStorageUnavailable):
		h.logger.Error("booking storage unavailable", "error", err)
		http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		h.logger.Error("booking request failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
