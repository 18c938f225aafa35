// Package router assembles the HTTP surface of the booking API.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/serenityspa/spa-platform/internal/bookings"
	"github.com/serenityspa/spa-platform/internal/catalog"
	httpmiddleware "github.com/serenityspa/spa-platform/internal/http/middleware"
	"github.com/serenityspa/spa-platform/internal/spa"
	"github.com/serenityspa/spa-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CatalogHandler     *catalog.Handler
	BookingsHandler    *bookings.Handler
	SpaHandler         *spa.Handler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// BookingRateLimit throttles booking writes per client IP. Zero disables it.
	BookingRateLimit float64
	BookingRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)

		if cfg.SpaHandler != nil {
			public.Get("/spa-info", cfg.SpaHandler.GetProfile)
		}

		if cfg.CatalogHandler != nil {
			public.Route("/services", func(r chi.Router) {
				r.Get("/", cfg.CatalogHandler.ListServices)
				r.Get("/categories", cfg.CatalogHandler.ListServicesByCategory)
				r.Get("/search/{term}", cfg.CatalogHandler.SearchServices)
				r.Get("/{serviceID}", cfg.CatalogHandler.GetService)
			})
		}

		if cfg.BookingsHandler != nil {
			public.Group(func(booking chi.Router) {
				if cfg.BookingRateLimit > 0 {
					booking.Use(httpmiddleware.RateLimit(cfg.BookingRateLimit, cfg.BookingRateBurst))
				}
				booking.Post("/book", cfg.BookingsHandler.CreateBooking)
				booking.Get("/available-slots", cfg.BookingsHandler.AvailableSlots)
				booking.Route("/bookings/{bookingID}", func(r chi.Router) {
					r.Get("/", cfg.BookingsHandler.GetBooking)
					r.Post("/cancel", cfg.BookingsHandler.CancelBooking)
				})
			})
		}

		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" && cfg.BookingsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Route("/bookings/{bookingID}", func(r chi.Router) {
				r.Post("/complete", cfg.BookingsHandler.CompleteBooking)
				r.Post("/cancel", cfg.BookingsHandler.CancelBooking)
			})
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
