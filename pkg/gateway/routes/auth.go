package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	gatewayauth "github.com/civicpulse/feedback-platform/pkg/gateway/auth"
	"github.com/gorilla/mux"
)

// AuthHandler forwards administrator logins to the external identity
// provider. No credential ever persists here.
type AuthHandler struct {
	idp *gatewayauth.IdPAuthenticator
}

func NewAuthHandler(idp *gatewayauth.IdPAuthenticator) *AuthHandler {
	return &AuthHandler{idp: idp}
}

func (h *AuthHandler) Register(r *mux.Router) {
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	session, err := h.idp.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, gatewayauth.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		logger.Log.WithError(err).Error("identity provider login failed")
		http.Error(w, "authentication unavailable", http.StatusBadGateway)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
