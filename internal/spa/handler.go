package spa

import (
	"encoding/json"
	"net/http"

	"github.com/serenityspa/spa-platform/pkg/logging"
)

// Handler exposes the spa profile over HTTP.
type Handler struct {
	store  *Store
	static *Profile
	logger *logging.Logger
}

// NewHandler creates a profile handler. When store is nil the static profile
// is served, which is how development mode runs without redis.
func NewHandler(store *Store, static *Profile, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if static == nil {
		static = DefaultProfile()
	}
	return &Handler{store: store, static: static, logger: logger}
}

// GetProfile handles GET /spa-info requests.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile := h.static
	if h.store != nil {
		p, err := h.store.Get(r.Context())
		if err != nil {
			h.logger.Error("failed to load spa profile", "error", err)
			http.Error(w, "failed to load spa profile", http.StatusInternalServerError)
			return
		}
		profile = p
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
