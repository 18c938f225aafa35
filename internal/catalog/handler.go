package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/serenityspa/spa-platform/pkg/logging"
)

// Handler handles HTTP requests for the service menu
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListServices handles GET /services requests, optionally filtered by category
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Category: r.URL.Query().Get("category")}

	services, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	if services == nil {
		services = []Service{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services)
}

// ListServicesByCategory handles GET /services/categories requests
func (h *Handler) ListServicesByCategory(w http.ResponseWriter, r *http.Request) {
	services, err := h.repo.List(r.Context(), ListFilter{})
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}

	groups := GroupByCategory(services)
	if groups == nil {
		groups = []CategoryGroup{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(groups)
}

// SearchServices handles GET /services/search/{term} requests
func (h *Handler) SearchServices(w http.ResponseWriter, r *http.Request) {
	term := chi.URLParam(r, "term")
	if strings.TrimSpace(term) == "" {
		http.Error(w, "missing search term", http.StatusBadRequest)
		return
	}

	services, err := h.repo.Search(r.Context(), term)
	if err != nil {
		h.logger.Error("failed to search services", "error", err, "term", term)
		http.Error(w, "failed to search services", http.StatusInternalServerError)
		return
	}
	if services == nil {
		services = []Service{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services)
}

// GetService handles GET /services/{serviceID} requests
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "serviceID")
	if id == "" {
		http.Error(w, "missing service id", http.StatusBadRequest)
		return
	}

	svc, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			http.Error(w, "Service not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load service", "error", err, "service_id", id)
		http.Error(w, "failed to load service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(svc)
}
