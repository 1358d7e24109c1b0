package handlers

import (
	"net/http"

	"github.com/lesechos/accounts/internal/httputil"
	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/middleware"
	"github.com/lesechos/accounts/internal/models"
	"github.com/lesechos/accounts/internal/service"
)

type UserHandler struct {
	service *service.UserService
	log     *logging.Logger
}

func NewUserHandler(service *service.UserService, log *logging.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// Register handles public sign-up on POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		httputil.WriteServiceError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

// UpdateMe handles PATCH /users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor := middleware.UserFromContext(r.Context())
	if actor == nil {
		httputil.WriteServiceError(w, r, h.log, service.Unauthorized(service.MsgUserNotInRequest))
		return
	}
	h.update(w, r, actor, actor.ID)
}

// List handles GET /users/admin.
//
// Query parameters:
//   - filters: JSON object of exact-match fields, e.g. {"role":"ADMIN"}
//   - sort: JSON object of field to direction, e.g. {"createdAt":"desc"}
//   - page, limit: 1-based page and page size
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q, err := models.ParseListQuery(
		query.Get("filters"),
		query.Get("sort"),
		httputil.ParseIntParam(query.Get("page"), models.DefaultPage),
		httputil.ParseIntParam(query.Get("limit"), models.DefaultLimit),
	)
	if err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}

	users, err := h.service.List(r.Context(), q)
	if err != nil {
		httputil.WriteServiceError(w, r, h.log, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}

	httputil.WriteJSON(w, http.StatusOK, models.ListUsersResponse{
		Data:  users,
		Page:  q.Page,
		Limit: q.Limit,
	})
}

// Create handles POST /users/admin.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}

	user, err := h.service.CreateByAdmin(r.Context(), middleware.UserFromContext(r.Context()), &req)
	if err != nil {
		httputil.WriteServiceError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, user)
}

// Get handles GET /users/admin/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.WriteServiceError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// Update handles PATCH /users/admin/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, middleware.UserFromContext(r.Context()), r.PathValue("id"))
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, actor *models.User, id string) {
	var req models.UpdateUserRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteJSONAPIValidationError(w, err.Error())
		return
	}

	user, err := h.service.Update(r.Context(), actor, id, &req)
	if err != nil {
		httputil.WriteServiceError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /users/admin/{id} and returns the removed user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Delete(r.Context(), middleware.UserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		httputil.WriteServiceError(w, r, h.log, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}
