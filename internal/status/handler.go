package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/statuskite/statuskite/internal/domain"
	"github.com/statuskite/statuskite/internal/pkg/httputil"
)

// Handler exposes the status engine over HTTP.
type Handler struct {
	engine *Engine
}

// NewHandler creates a new status handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes registers actor-scoped status routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status/overall", h.Overall)
	r.With(httputil.RequireRole(domain.RoleEditor)).Post("/status/recalculate", h.RecalculateAll)
}

// Overall handles GET /status/overall for the actor's organization.
func (h *Handler) Overall(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	overall, err := h.engine.Aggregate(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, map[string]string{"status": string(overall)})
}

// RecalculateAll handles POST /status/recalculate. It rederives every
// service status of the organization and reports how many changed.
func (h *Handler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	actor := httputil.Actor(r.Context())

	changed, err := h.engine.RecalculateAll(r.Context(), actor.OrganizationID)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}
	httputil.Success(w, http.StatusOK, map[string]int{"changed_count": changed})
}
