package surveillance

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/razorlong2/epimind-app/pkg/common/logger"
)

// HTTPHandler exposes the rollups for dashboards and spot checks.
type HTTPHandler struct {
	store *Store
}

func NewHTTPHandler(store *Store) *HTTPHandler {
	return &HTTPHandler{store: store}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/rollups", h.handleRollups).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleRollups(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if val := r.URL.Query().Get("limit"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	rollups, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list ward rollups")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if rollups == nil {
		rollups = []WardRollup{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rollups); err != nil {
		logger.Log.WithError(err).Error("failed to write json response")
	}
}
