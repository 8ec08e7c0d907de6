// Package handler exposes the application lifecycle over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
	appservice "github.com/estdev3690/digital-e-gram-panchayat/internal/application/service"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/store"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/document"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/httputil"
)

// maxRequestBody caps a whole submission request: headroom over the per-file
// limit for multiple documents plus multipart framing.
const maxRequestBody = 64 << 20

// ServiceTitles resolves catalog entries for response projections.
type ServiceTitles interface {
	Title(ctx context.Context, id domain.ServiceID) (string, error)
}

// ApplicantContact is the applicant projection embedded in staff-facing
// responses.
type ApplicantContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ApplicantDirectory resolves applicant contact details for projections.
type ApplicantDirectory interface {
	Contact(ctx context.Context, id domain.UserID) (ApplicantContact, error)
}

type Handler struct {
	service   *appservice.Service
	titles    ServiceTitles
	directory ApplicantDirectory
	logger    *slog.Logger
}

func NewHandler(service *appservice.Service, titles ServiceTitles, directory ApplicantDirectory, logger *slog.Logger) *Handler {
	return &Handler{service: service, titles: titles, directory: directory, logger: logger}
}

// Routes mounts the application endpoints. All of them sit behind the
// authentication middleware.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/applications", h.Submit)
	r.Get("/applications/my", h.ListMine)
	r.Get("/applications", h.ListAll)
	r.Get("/applications/{applicationID}", h.Get)
	r.Patch("/applications/{applicationID}/status", h.UpdateStatus)
}

// Submit handles POST /applications. The request is multipart/form-data with
// a "service" field and one or more "documents" files.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(document.MaxFileSize); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart request"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	serviceID, err := domain.ParseServiceID(r.FormValue("service"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	files, closeFiles, err := openUploads(r.MultipartForm.File["documents"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer closeFiles()

	app, err := h.service.Submit(r.Context(), serviceID, files)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, h.project(r.Context(), app))
}

// ListMine handles GET /applications/my.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListMine(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.projectAll(r.Context(), apps))
}

// ListAll handles GET /applications with optional status and search filters.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	var filter store.Filter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}
	filter.Search = r.URL.Query().Get("search")

	apps, err := h.service.ListAll(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.projectAll(r.Context(), apps))
}

// Get handles GET /applications/{applicationID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.project(r.Context(), app))
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// UpdateStatus handles PATCH /applications/{applicationID}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	app, err := h.service.UpdateStatus(r.Context(), id, status, req.Comment)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.project(r.Context(), app))
}

// openUploads converts multipart headers into intake files. The returned
// closer releases every opened part.
func openUploads(headers []*multipart.FileHeader) ([]document.File, func(), error) {
	files := make([]document.File, 0, len(headers))
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, header := range headers {
		part, err := header.Open()
		if err != nil {
			closeAll()
			return nil, nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "could not read uploaded file")
		}
		opened = append(opened, part)
		files = append(files, document.File{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Size:     header.Size,
			Content:  part,
		})
	}
	return files, closeAll, nil
}
