package feedback

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/kiosk", h.handleSubmitKiosk).Methods(http.MethodPost)
	r.HandleFunc("/mobile", h.handleSubmitMobile).Methods(http.MethodPost)
}

func (h *Handler) handleSubmitKiosk(w http.ResponseWriter, r *http.Request) {
	var req models.KioskSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	result, err := h.service.SubmitKiosk(r.Context(), req)
	if errors.Is(err, ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		logger.Log.WithError(err).Error("failed to submit kiosk response")
		http.Error(w, "failed to submit response", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleSubmitMobile(w http.ResponseWriter, r *http.Request) {
	var req models.MobileSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	err := h.service.SubmitMobile(r.Context(), req)
	switch {
	case errors.Is(err, ErrInvalidToken):
		http.Error(w, "invalid token", http.StatusNotFound)
		return
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logger.Log.WithError(err).Error("failed to submit mobile response")
		http.Error(w, "failed to submit response", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
