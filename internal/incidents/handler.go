package incidents

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/httputil"
)

// Handler handles HTTP requests for the incidents module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new incidents handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers actor-scoped incident routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/incidents", h.List)
	r.Get("/incidents/active", h.ListActive)
	r.Get("/incidents/statistics", h.GetStatistics)
	r.Get("/incidents/{incidentID}", h.Get)
	r.Get("/services/{serviceID}/incidents", h.ListByService)
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireRole(domain.RoleEditor))
		r.Post("/incidents", h.Create)
		r.Patch("/incidents/{incidentID}", h.Update)
		r.Post("/incidents/{incidentID}/status", h.UpdateStatus)
	})
	r.With(httputil.RequireRole(domain.RoleAdmin)).Delete("/incidents/{incidentID}", h.Delete)
}

var incidentErrorMappings = []httputil.ErrorMapping{
	{Error: ErrIncidentNotFound, Status: http.StatusNotFound},
	{Error: ErrServiceNotFound, Status: http.StatusNotFound},
	{Error: ErrInvalidStatus, Status: http.StatusBadRequest},
	{Error: ErrInvalidImpact, Status: http.StatusBadRequest},
}

// CreateRequest represents the request body for opening an incident.
type CreateRequest struct {
	ServiceID   string `json:"service_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description"`
	Impact      string `json:"impact" validate:"required,oneof=low medium high critical"`
}

// Create handles POST /incidents.
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

	incident, err := h.service.Create(r.Context(), actor, CreateInput{
		ServiceID:   req.ServiceID,
		Title:       req.Title,
		Description: req.Description,
		Impact:      domain.IncidentImpact(req.Impact),
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}
	httputil.Success(w, http.StatusCreated, incident)
}

// List handles GET /incidents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	out, err := h.service.List(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, out)
}

// ListActive handles GET /incidents/active.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	out, err := h.service.ListActive(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, out)
}

// ListByService handles GET /services/{serviceID}/incidents.
func (h *Handler) ListByService(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	serviceID := chi.URLParam(r, "serviceID")

	out, err := h.service.ListByService(r.Context(), actor.OrganizationID, serviceID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, out)
}

// GetStatistics handles GET /incidents/statistics.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	stats, err := h.service.GetStatistics(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, stats)
}

// Get handles GET /incidents/{incidentID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	incidentID := chi.URLParam(r, "incidentID")

	incident, err := h.service.Get(r.Context(), actor.OrganizationID, incidentID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// UpdateRequest represents the request body for editing an incident.
type UpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=investigating identified monitoring resolved"`
	Impact      *string `json:"impact" validate:"omitempty,oneof=low medium high critical"`
}

// Update handles PATCH /incidents/{incidentID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	incidentID := chi.URLParam(r, "incidentID")

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
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.IncidentStatus(*req.Status)
		input.Status = &status
	}
	if req.Impact != nil {
		impact := domain.IncidentImpact(*req.Impact)
		input.Impact = &impact
	}

	incident, err := h.service.Update(r.Context(), actor.OrganizationID, incidentID, input)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// UpdateStatusRequest represents the request body for a lifecycle update.
type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=investigating identified monitoring resolved"`
	Message string `json:"message"`
}

// UpdateStatus handles POST /incidents/{incidentID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	incidentID := chi.URLParam(r, "incidentID")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	incident, err := h.service.UpdateStatus(r.Context(), actor.OrganizationID, incidentID, domain.IncidentStatus(req.Status), req.Message)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}
	httputil.Success(w, http.StatusOK, incident)
}

// Delete handles DELETE /incidents/{incidentID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	incidentID := chi.URLParam(r, "incidentID")

	if err := h.service.Delete(r.Context(), actor.OrganizationID, incidentID); err != nil {
		httputil.HandleError(r.Context(), w, err, incidentErrorMappings)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
