package public

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/statuskite/statuskite/internal/pkg/httputil"
)

// Handler handles unauthenticated status page requests.
type Handler struct {
	service *Service
	builder *Builder
}

// NewHandler creates a new public handler.
func NewHandler(service *Service, builder *Builder) *Handler {
	return &Handler{service: service, builder: builder}
}

// RegisterRoutes registers public routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status/{identifier}", h.GetStatusPage)
	r.Get("/status/{identifier}/timeline", h.GetTimeline)
}

// GetStatusPage handles GET /status/{identifier}.
func (h *Handler) GetStatusPage(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	page, err := h.service.GetStatusPage(r.Context(), identifier)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrOrganizationNotFound, Status: http.StatusNotFound},
		})
		return
	}
	httputil.Success(w, http.StatusOK, page)
}

// GetTimeline handles GET /status/{identifier}/timeline.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")

	days := DefaultWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			httputil.Error(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}

	report, err := h.builder.Build(r.Context(), identifier, days)
	if err != nil {
		httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
			{Error: ErrOrganizationNotFound, Status: http.StatusNotFound},
		})
		return
	}
	httputil.Success(w, http.StatusOK, report)
}
