package notify

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/httputil"
)

// Handler handles HTTP requests for webhook channel management.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new notify handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers actor-scoped webhook channel routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httputil.RequireRole(domain.RoleAdmin))
		r.Get("/webhooks", h.List)
		r.Post("/webhooks", h.Create)
		r.Patch("/webhooks/{channelID}", h.Update)
		r.Delete("/webhooks/{channelID}", h.Delete)
	})
}

// CreateChannelRequest represents the request body for registering a webhook.
type CreateChannelRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	URL  string `json:"url" validate:"required,url"`
}

// Create handles POST /webhooks.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	var req CreateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	channel, err := h.service.CreateChannel(r.Context(), actor.OrganizationID, CreateChannelInput{
		Name: req.Name,
		URL:  req.URL,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrNameTaken, Status: http.StatusConflict},
		})
		return
	}
	httputil.Success(w, http.StatusCreated, channel)
}

// List handles GET /webhooks.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	channels, err := h.service.ListChannels(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, channels)
}

// UpdateChannelRequest represents the request body for updating a webhook.
type UpdateChannelRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=255"`
	URL       *string `json:"url" validate:"omitempty,url"`
	IsEnabled *bool   `json:"is_enabled"`
}

// Update handles PATCH /webhooks/{channelID}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	channelID := chi.URLParam(r, "channelID")

	var req UpdateChannelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	channel, err := h.service.UpdateChannel(r.Context(), actor.OrganizationID, channelID, UpdateChannelInput{
		Name:      req.Name,
		URL:       req.URL,
		IsEnabled: req.IsEnabled,
	})
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrChannelNotFound, Status: http.StatusNotFound},
			{Error: ErrNameTaken, Status: http.StatusConflict},
		})
		return
	}
	httputil.Success(w, http.StatusOK, channel)
}

// Delete handles DELETE /webhooks/{channelID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())
	channelID := chi.URLParam(r, "channelID")

	if err := h.service.DeleteChannel(r.Context(), actor.OrganizationID, channelID); err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrChannelNotFound, Status: http.StatusNotFound},
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
