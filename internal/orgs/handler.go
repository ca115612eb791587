package orgs

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/httputil"
)

// Handler handles HTTP requests for the orgs module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new orgs handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers routes that need no actor.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/organizations", h.Register)
	r.Get("/directory", h.Directory)
}

// RegisterRoutes registers actor-scoped organization routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/organization", h.GetOwn)
	r.With(httputil.RequireRole(domain.RoleAdmin)).Patch("/organization", h.Update)
}

// RegisterRequest represents the request body for organization registration.
type RegisterRequest struct {
	Name             string `json:"name" validate:"required,min=1,max=255"`
	Description      string `json:"description"`
	Website          string `json:"website" validate:"omitempty,url"`
	Industry         string `json:"industry"`
	CompanySize      string `json:"company_size"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	SubscriptionCode string `json:"subscription_code" validate:"required"`
	AdminEmail       string `json:"admin_email" validate:"required,email"`
	AdminFullName    string `json:"admin_full_name" validate:"required,min=1,max=255"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	Organization *domain.Organization `json:"organization"`
	Admin        *domain.User         `json:"admin"`
}

// Register handles POST /organizations.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	org, admin, err := h.service.Register(r.Context(), RegisterInput{
		Name:             req.Name,
		Description:      req.Description,
		Website:          req.Website,
		Industry:         req.Industry,
		CompanySize:      req.CompanySize,
		Phone:            req.Phone,
		Address:          req.Address,
		SubscriptionCode: req.SubscriptionCode,
		AdminEmail:       req.AdminEmail,
		AdminFullName:    req.AdminFullName,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrNameTaken, Status: http.StatusConflict},
		})
		return
	}

	httputil.Success(w, http.StatusCreated, RegisterResponse{Organization: org, Admin: admin})
}

// Directory handles GET /directory.
func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Directory(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, entries)
}

// GetOwn handles GET /organization for the acting user's organization.
func (h *Handler) GetOwn(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	org, err := h.service.Get(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrOrganizationNotFound, Status: http.StatusNotFound},
		})
		return
	}
	httputil.Success(w, http.StatusOK, org)
}

// UpdateRequest represents the request body for updating organization settings.
type UpdateRequest struct {
	Description *string `json:"description"`
	Website     *string `json:"website" validate:"omitempty,url"`
	Industry    *string `json:"industry"`
	CompanySize *string `json:"company_size"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Status      *string `json:"status" validate:"omitempty,oneof=active suspended trial"`
}

// Update handles PATCH /organization.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input := UpdateInput{
		Description: req.Description,
		Website:     req.Website,
		Industry:    req.Industry,
		CompanySize: req.CompanySize,
		Phone:       req.Phone,
		Address:     req.Address,
	}
	if req.Status != nil {
		status := domain.OrganizationStatus(*req.Status)
		input.Status = &status
	}

	org, err := h.service.Update(r.Context(), actor.OrganizationID, input)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrOrganizationNotFound, Status: http.StatusNotFound},
			{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
		})
		return
	}
	httputil.Success(w, http.StatusOK, org)
}
