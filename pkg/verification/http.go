package verification

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/verify", h.handleVerify).Methods(http.MethodGet)
}

// Invalid and expired tokens are terminal for the caller, so they map to
// distinct statuses the mobile client can render as access denied.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("token")
	if value == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.Verify(r.Context(), value)
	switch {
	case errors.Is(err, ErrTokenInvalid):
		http.Error(w, "invalid token", http.StatusNotFound)
		return
	case errors.Is(err, ErrTokenExpired):
		http.Error(w, "token expired", http.StatusGone)
		return
	case errors.Is(err, ErrTokenUsed):
		http.Error(w, "token already used", http.StatusConflict)
		return
	case err != nil:
		logger.Log.WithError(err).Error("failed to verify token")
		http.Error(w, "failed to verify token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
