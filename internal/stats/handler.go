package stats

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/httputil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the dashboard endpoint. The router must already enforce
// authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/stats", h.Dashboard)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dashboard)
}
