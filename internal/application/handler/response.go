package handler

import (
	"context"
	"time"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
)

// applicationResponse is the wire projection of an application. The service
// title and applicant contact are resolved at render time so list views need
// no joins in the repository.
type applicationResponse struct {
	ID                string                 `json:"id"`
	ApplicationNumber string                 `json:"applicationNumber"`
	Service           serviceRef             `json:"service"`
	Applicant         ApplicantContact       `json:"applicant"`
	Status            string                 `json:"status"`
	Documents         []documentResponse     `json:"documents"`
	Remarks           []remarkResponse       `json:"remarks"`
	PaymentStatus     string                 `json:"paymentStatus"`
	PaymentDetails    *models.PaymentDetails `json:"paymentDetails,omitempty"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

type serviceRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

type documentResponse struct {
	Name       string    `json:"name"`
	Locator    string    `json:"locator"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type remarkResponse struct {
	Comment   string    `json:"comment"`
	Status    string    `json:"status"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *Handler) project(ctx context.Context, app *models.Application) applicationResponse {
	resp := applicationResponse{
		ID:                app.ID.String(),
		ApplicationNumber: app.Number,
		Service:           serviceRef{ID: app.Service.String()},
		Status:            app.Status.String(),
		Documents:         make([]documentResponse, 0, len(app.Documents)),
		Remarks:           make([]remarkResponse, 0, len(app.Remarks)),
		PaymentStatus:     string(app.PaymentStatus),
		PaymentDetails:    app.PaymentDetails,
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}

	// Projection lookups are best effort; a missing catalog entry or user
	// record must not fail the read.
	if title, err := h.titles.Title(ctx, app.Service); err == nil {
		resp.Service.Title = title
	}
	if contact, err := h.directory.Contact(ctx, app.Applicant); err == nil {
		resp.Applicant = contact
	}

	for _, d := range app.Documents {
		resp.Documents = append(resp.Documents, documentResponse{
			Name:       d.Name,
			Locator:    d.Locator,
			UploadedAt: d.UploadedAt,
		})
	}
	for _, rm := range app.Remarks {
		resp.Remarks = append(resp.Remarks, remarkResponse{
			Comment:   rm.Comment,
			Status:    rm.Status.String(),
			UpdatedBy: rm.UpdatedBy.String(),
			UpdatedAt: rm.UpdatedAt,
		})
	}
	return resp
}

func (h *Handler) projectAll(ctx context.Context, apps []*models.Application) []applicationResponse {
	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, h.project(ctx, app))
	}
	return out
}
