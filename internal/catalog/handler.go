package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/httputil"
)

// Handler handles HTTP requests for the catalog module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers actor-scoped service catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/services", h.List)
	r.Get("/services/{serviceID}", h.Get)
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireRole(domain.RoleEditor))
		r.Post("/services", h.Create)
		r.Patch("/services/{serviceID}", h.Update)
		r.Patch("/services/{serviceID}/status", h.OverrideStatus)
	})
	r.With(httputil.RequireRole(domain.RoleAdmin)).Delete("/services/{serviceID}", h.Delete)
}

// CreateRequest represents the request body for creating a service.
type CreateRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description"`
}

// Create handles POST /services.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.Create(r.Context(), actor.OrganizationID, CreateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusCreated, service)
}

// List handles GET /services.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	services, err := h.service.List(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, services)
}

// Get handles GET /services/{serviceID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	serviceID := chi.URLParam(r, "serviceID")

	service, err := h.service.Get(r.Context(), actor.OrganizationID, serviceID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrServiceNotFound, Status: http.StatusNotFound},
		})
		return
	}
	httputil.Success(w, http.StatusOK, service)
}

// UpdateRequest represents the request body for updating a service.
type UpdateRequest struct {
	Name             *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description      *string  `json:"description"`
	UptimePercentage *float64 `json:"uptime_percentage" validate:"omitempty,gte=0,lte=100"`
}

// Update handles PATCH /services/{serviceID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	serviceID := chi.URLParam(r, "serviceID")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.Update(r.Context(), actor.OrganizationID, serviceID, UpdateInput{
		Name:             req.Name,
		Description:      req.Description,
		UptimePercentage: req.UptimePercentage,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrServiceNotFound, Status: http.StatusNotFound},
		})
		return
	}
	httputil.Success(w, http.StatusOK, service)
}

// OverrideStatusRequest represents the request body for a manual status override.
type OverrideStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=operational degraded partial_outage major_outage maintenance"`
}

// OverrideStatus handles PATCH /services/{serviceID}/status.
func (h *Handler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	serviceID := chi.URLParam(r, "serviceID")

	var req OverrideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	service, err := h.service.OverrideStatus(r.Context(), actor.OrganizationID, serviceID, domain.ServiceStatus(req.Status))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrServiceNotFound, Status: http.StatusNotFound},
			{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
		})
		return
	}
	httputil.Success(w, http.StatusOK, service)
}

// Delete handles DELETE /services/{serviceID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	serviceID := chi.URLParam(r, "serviceID")

	if err := h.service.Delete(r.Context(), actor.OrganizationID, serviceID); err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrServiceNotFound, Status: http.StatusNotFound},
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
