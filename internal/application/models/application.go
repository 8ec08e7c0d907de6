// Package models defines the application aggregate: the status state machine,
// its append-only remark trail, and the attached documents.
package models

import (
	"strings"
	"time"

	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
)

// SubmittedRemark is the comment recorded on the initial remark of every
// application.
const SubmittedRemark = "Application submitted successfully"

// Application is the aggregate root for a citizen's service application.
//
// Invariants:
//   - Number is globally unique and immutable after creation
//   - Service and Applicant references are immutable after creation
//   - Documents is non-empty and append-only; documents are attached only at
//     submission, never afterwards
//   - Remarks is non-empty, append-only, and its first entry always has
//     status pending; the last entry's status always equals Status
//   - Status changes only through ApplyStatusUpdate, which couples the status
//     write with the remark append so the trail can never diverge
//
// Payment fields are orthogonal to the status machine: nothing about status
// transitions is gated on payment.
type Application struct {
	ID             domain.ApplicationID `json:"id"`
	Number         string               `json:"application_number"`
	Service        domain.ServiceID     `json:"service_id"`
	Applicant      domain.UserID        `json:"applicant_id"`
	Status         Status               `json:"status"`
	Documents      []Document           `json:"documents"`
	Remarks        []Remark             `json:"remarks"`
	PaymentStatus  PaymentStatus        `json:"payment_status"`
	PaymentDetails *PaymentDetails      `json:"payment_details,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// Document is one uploaded file attached to an application. Owned exclusively
// by its application; Locator is the opaque storage reference.
type Document struct {
	Name       string    `json:"name"`
	Locator    string    `json:"locator"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Remark is one immutable audit-trail entry: the status being entered, who
// entered it, when, and why. The sequence is never reordered or truncated.
type Remark struct {
	Comment   string        `json:"comment"`
	Status    Status        `json:"status"`
	UpdatedBy domain.UserID `json:"updated_by"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PaymentDetails records a completed or attempted fee payment.
type PaymentDetails struct {
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	PaidAt        time.Time `json:"paid_at"`
}

// NewApplication constructs a freshly submitted application in the initial
// pending state with its first remark authored by the applicant.
//
// Errors: CodeInvariantViolation when the number, references, or documents
// are missing.
func NewApplication(
	id domain.ApplicationID,
	number string,
	service domain.ServiceID,
	applicant domain.UserID,
	documents []Document,
	now time.Time,
) (*Application, error) {
	if number == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application number cannot be empty")
	}
	if service.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "service reference is required")
	}
	if applicant.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant reference is required")
	}
	if len(documents) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "at least one document is required")
	}
	return &Application{
		ID:        id,
		Number:    number,
		Service:   service,
		Applicant: applicant,
		Status:    StatusPending,
		Documents: documents,
		Remarks: []Remark{{
			Comment:   SubmittedRemark,
			Status:    StatusPending,
			UpdatedBy: applicant,
			UpdatedAt: now,
		}},
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CanUpdateStatus checks whether applying (status, comment) would be legal,
// without mutating. Use with ApplyStatusUpdate inside the store's atomic
// update callback.
//
// Errors: CodeValidation for a blank comment, CodeInvalidInput for an unknown
// status, CodeInvariantViolation when the transition is not permitted.
func (a *Application) CanUpdateStatus(next Status, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return dErrors.New(dErrors.CodeValidation, "Comment is required")
	}
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid status")
	}
	if !a.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"cannot move application from %s to %s", a.Status, next)
	}
	return nil
}

// ApplyStatusUpdate sets the new status and appends the matching remark in
// one step, keeping Status and Remarks coupled. Call CanUpdateStatus first.
func (a *Application) ApplyStatusUpdate(next Status, comment string, by domain.UserID, now time.Time) {
	a.Status = next
	a.Remarks = append(a.Remarks, Remark{
		Comment:   strings.TrimSpace(comment),
		Status:    next,
		UpdatedBy: by,
		UpdatedAt: now,
	})
	a.UpdatedAt = now
}

// RecordPayment marks the application's fee as settled. Orthogonal to the
// status machine.
func (a *Application) RecordPayment(details PaymentDetails, now time.Time) {
	a.PaymentStatus = PaymentCompleted
	a.PaymentDetails = &details
	a.UpdatedAt = now
}
