// Package handler exposes the service catalog over HTTP.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/catalog/models"
	catalogservice "github.com/estdev3690/digital-e-gram-panchayat/internal/catalog/service"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/httputil"
)

type Handler struct {
	service *catalogservice.Service
	logger  *slog.Logger
}

func NewHandler(service *catalogservice.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// PublicRoutes mounts the unauthenticated catalog reads.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/services", h.ListActive)
	r.Get("/services/{serviceID}", h.Get)
}

// AdminRoutes mounts the catalog management endpoints. The router must
// already enforce authentication.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/services", h.ListAll)
	r.Post("/services", h.Create)
	r.Put("/services/{serviceID}", h.Update)
	r.Delete("/services/{serviceID}", h.Delete)
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListActive(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, services)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListAll(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, services)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseServiceID(chi.URLParam(r, "serviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	svc, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, svc)
}

type createRequest struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	RequiredDocuments []string `json:"required_documents"`
	ProcessingTime    string   `json:"processing_time"`
	Fees              int64    `json:"fees"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	svc, err := h.service.Create(r.Context(), catalogservice.CreateInput{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		RequiredDocuments: req.RequiredDocuments,
		ProcessingTime:    req.ProcessingTime,
		Fees:              req.Fees,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, svc)
}

type updateRequest struct {
	Title             *string   `json:"title"`
	Description       *string   `json:"description"`
	Category          *string   `json:"category"`
	RequiredDocuments *[]string `json:"required_documents"`
	ProcessingTime    *string   `json:"processing_time"`
	Fees              *int64    `json:"fees"`
	IsActive          *bool     `json:"is_active"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseServiceID(chi.URLParam(r, "serviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	svc, err := h.service.Update(r.Context(), id, models.Update{
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		RequiredDocuments: req.RequiredDocuments,
		ProcessingTime:    req.ProcessingTime,
		Fees:              req.Fees,
		IsActive:          req.IsActive,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, svc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseServiceID(chi.URLParam(r, "serviceID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Service deleted successfully"})
}
