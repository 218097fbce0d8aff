package stats

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/privacy"
	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
	masker  *privacy.Masker
}

func NewHandler(service *Service, masker *privacy.Masker) *Handler {
	return &Handler{service: service, masker: masker}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/stats", h.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/feedback", h.handleListFeedback).Methods(http.MethodGet)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.service.ComputeStats(r.Context(), filter)
	if err != nil {
		logger.Log.WithError(err).Error("failed to compute stats")
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	responses, err := h.service.ListResponses(r.Context(), filter)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list responses")
		http.Error(w, "failed to list responses", http.StatusInternalServerError)
		return
	}

	if h.masker != nil && r.URL.Query().Get("reveal_contact") != "true" {
		for i := range responses {
			responses[i] = h.masker.MaskResponse(responses[i])
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": responses})
}

func parseFilter(r *http.Request) (models.ResponseFilter, error) {
	var filter models.ResponseFilter
	query := r.URL.Query()

	if raw := query.Get("type"); raw != "" {
		channel := models.Channel(raw)
		if !channel.Valid() {
			return models.ResponseFilter{}, fmt.Errorf("invalid filter value for type")
		}
		filter.Channel = &channel
	}
	if raw := query.Get("start_date"); raw != "" {
		parsed, err := parseTime(raw)
		if err != nil {
			return models.ResponseFilter{}, fmt.Errorf("invalid filter value for start_date")
		}
		filter.Start = &parsed
	}
	if raw := query.Get("end_date"); raw != "" {
		parsed, err := parseTime(raw)
		if err != nil {
			return models.ResponseFilter{}, fmt.Errorf("invalid filter value for end_date")
		}
		filter.End = &parsed
	}
	return filter, nil
}

func parseTime(raw string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", raw)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
