package identity

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/httputil"
)

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers routes that need no actor.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/organizations/{organizationID}/members", h.Join)
}

// RegisterRoutes registers actor-scoped membership routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/members", h.ListMembers)
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireRole(domain.RoleAdmin))
		r.Get("/members/pending", h.ListPending)
		r.Post("/members/{userID}/approve", h.Approve)
		r.Post("/members/{userID}/reject", h.Reject)
		r.Patch("/members/{userID}/role", h.UpdateRole)
	})
}

// JoinRequest represents the request body for joining an organization.
type JoinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=1,max=255"`
}

// Join handles POST /organizations/{organizationID}/members.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	organizationID := chi.URLParam(r, "organizationID")

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.Join(r.Context(), organizationID, req.Email, req.FullName)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrOrganizationNotFound, Status: http.StatusNotFound},
			{Error: ErrEmailTaken, Status: http.StatusConflict},
		})
		return
	}
	httputil.Success(w, http.StatusCreated, user)
}

// ListMembers handles GET /members.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	members, err := h.service.ListMembers(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, members)
}

// ListPending handles GET /members/pending.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	members, err := h.service.ListPending(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, members)
}

// Approve handles POST /members/{userID}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

// Reject handles POST /members/{userID}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor *domain.User, userID string) (*domain.User, error)) {
	actor := httputil.Actor(r.Context())
	userID := chi.URLParam(r, "userID")

	user, err := fn(r.Context(), actor, userID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrUserNotFound, Status: http.StatusNotFound},
			{Error: ErrNotPending, Status: http.StatusConflict},
		})
		return
	}
	httputil.Success(w, http.StatusOK, user)
}

// UpdateRoleRequest represents the request body for changing a member's role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin editor viewer"`
}

// UpdateRole handles PATCH /members/{userID}/role.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	userID := chi.URLParam(r, "userID")

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.UpdateRole(r.Context(), actor, userID, domain.Role(req.Role))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrUserNotFound, Status: http.StatusNotFound},
			{Error: ErrOwnRole, Status: http.StatusUnprocessableEntity},
			{Error: ErrInvalidRole, Status: http.StatusBadRequest},
		})
		return
	}
	httputil.Success(w, http.StatusOK, user)
}
