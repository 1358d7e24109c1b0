package handlers

import (
	"net/http"

	"github.com/lesechos/accounts/internal/httputil"
	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/middleware"
	"github.com/lesechos/accounts/internal/models"
	"github.com/lesechos/accounts/internal/service"
)

type AuthHandler struct {
	service *service.AuthService
	log     *logging.Logger
}

func NewAuthHandler(service *service.AuthService, log *logging.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteServiceError(w, r, h.log, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// Me handles GET /auth/me and returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		httputil.WriteServiceError(w, r, h.log, service.Unauthorized(service.MsgUserNotInRequest))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Logout(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		httputil.WriteServiceError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}
