// Package service is the application lifecycle engine. It owns the status
// state machine, consults the authorization policy before every operation,
// couples every status change with its audit remark, and coordinates number
// generation with the repository's uniqueness constraint.
//
// The engine holds no mutable state between requests; everything durable
// lives in the stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	appmetrics "github.com/estdev3690/digital-e-gram-panchayat/internal/application/metrics"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/store"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/authz"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/document"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/requestcontext"
)

// numberRetries bounds how often a submission regenerates its application
// number after a uniqueness collision before surfacing a conflict.
const numberRetries = 3

// ApplicationStore is the repository contract the engine depends on.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error)
	Execute(ctx context.Context, id domain.ApplicationID,
		validate func(*models.Application) error,
		mutate func(*models.Application)) (*models.Application, error)
	ListByApplicant(ctx context.Context, applicant domain.UserID) ([]*models.Application, error)
	List(ctx context.Context, filter store.Filter) ([]*models.Application, error)
}

// SequenceStore allocates per-period sequence values for number generation.
type SequenceStore interface {
	Next(ctx context.Context, period string) (int64, error)
}

// Intake validates and stores submission documents.
type Intake interface {
	Process(ctx context.Context, files []document.File) ([]models.Document, error)
	Discard(ctx context.Context, docs []models.Document)
}

// Catalog is the read-only service catalog collaborator: submissions must
// reference an existing, active service.
type Catalog interface {
	ResolveActive(ctx context.Context, id domain.ServiceID) error
}

// Service orchestrates the application lifecycle.
type Service struct {
	apps      ApplicationStore
	sequences SequenceStore
	intake    Intake
	catalog   Catalog
	logger    *slog.Logger
	metrics   *appmetrics.Metrics
}

func NewService(
	apps ApplicationStore,
	sequences SequenceStore,
	intake Intake,
	catalog Catalog,
	logger *slog.Logger,
	metrics *appmetrics.Metrics,
) *Service {
	return &Service{
		apps:      apps,
		sequences: sequences,
		intake:    intake,
		catalog:   catalog,
		logger:    logger,
		metrics:   metrics,
	}
}

// Submit creates a new application for the calling principal: documents are
// validated and stored, a unique application number is allocated, and the
// record is persisted in the pending state with its initial remark.
//
// Errors: CodeForbidden unless the caller has the user role; CodeValidation
// for rejected documents; CodeNotFound for an unknown or inactive service;
// CodeConflict when number generation exhausts its retries. A failed
// submission persists nothing and leaves no stored documents behind.
func (s *Service) Submit(ctx context.Context, serviceID domain.ServiceID, files []document.File) (*models.Application, error) {
	principal := requestcontext.Principal(ctx)
	if err := authz.Check(principal, authz.ActionSubmitApplication); err != nil {
		return nil, err
	}
	if err := s.catalog.ResolveActive(ctx, serviceID); err != nil {
		return nil, err
	}

	start := time.Now()
	docs, err := s.intake.Process(ctx, files)
	if err != nil {
		return nil, err
	}

	app, err := s.createWithUniqueNumber(ctx, serviceID, principal.ID, docs)
	if err != nil {
		// The documents were already stored; a submission that does not
		// persist must not leave them orphaned.
		s.intake.Discard(ctx, docs)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Submissions.Inc()
		s.metrics.ObserveSubmit(start)
	}
	s.logger.InfoContext(ctx, "application submitted",
		"application_number", app.Number,
		"service_id", serviceID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return app, nil
}

// createWithUniqueNumber allocates a number and persists the record,
// regenerating on uniqueness collisions. The repository constraint, not the
// counter read, is what guarantees uniqueness under concurrency.
func (s *Service) createWithUniqueNumber(
	ctx context.Context,
	serviceID domain.ServiceID,
	applicant domain.UserID,
	docs []models.Document,
) (*models.Application, error) {
	now := requestcontext.Now(ctx)
	for attempt := 0; attempt < numberRetries; attempt++ {
		number, err := s.nextNumber(ctx, now)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate application number")
		}

		app, err := models.NewApplication(domain.NewApplicationID(), number, serviceID, applicant, docs, now)
		if err != nil {
			return nil, err
		}

		err = s.apps.Create(ctx, app)
		if err == nil {
			return app, nil
		}
		if errors.Is(err, sentinel.ErrConflict) {
			if s.metrics != nil {
				s.metrics.NumberCollisions.Inc()
			}
			s.logger.WarnContext(ctx, "application number collision, retrying",
				"application_number", number,
				"attempt", attempt+1,
			)
			continue
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist application")
	}
	return nil, dErrors.New(dErrors.CodeConflict, "could not allocate a unique application number")
}

// nextNumber formats the human-facing reference: GP + two-digit year +
// two-digit month + zero-padded per-period sequence.
func (s *Service) nextNumber(ctx context.Context, now time.Time) (string, error) {
	period := now.Format("0601")
	seq, err := s.sequences.Next(ctx, period)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("GP%s%04d", period, seq), nil
}

// UpdateStatus moves an application to a new status and appends the matching
// remark. This is the only path by which status changes after creation; the
// write and the remark append are atomic within the store.
//
// Errors: CodeForbidden unless the caller is staff or admin; CodeNotFound
// for unknown applications; CodeValidation for a blank comment. A failed
// update leaves status and remark history untouched.
func (s *Service) UpdateStatus(ctx context.Context, id domain.ApplicationID, next models.Status, comment string) (*models.Application, error) {
	principal := requestcontext.Principal(ctx)
	if err := authz.Check(principal, authz.ActionUpdateStatus); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	app, err := s.apps.Execute(ctx, id,
		func(a *models.Application) error {
			return a.CanUpdateStatus(next, comment)
		},
		func(a *models.Application) {
			a.ApplyStatusUpdate(next, comment, principal.ID, now)
		},
	)
	if err != nil {
		return nil, wrapAppErr(err)
	}

	if s.metrics != nil {
		s.metrics.StatusUpdates.Inc()
	}
	s.logger.InfoContext(ctx, "application status updated",
		"application_number", app.Number,
		"status", app.Status.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return app, nil
}

// Get fetches one application. Staff and admin may read any; applicants only
// their own.
func (s *Service) Get(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	principal := requestcontext.Principal(ctx)
	if principal.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, wrapAppErr(err)
	}
	if err := authz.CheckOwnerOrStaff(principal, app.Applicant); err != nil {
		return nil, err
	}
	return app, nil
}

// ListMine returns the caller's applications, newest first.
func (s *Service) ListMine(ctx context.Context) ([]*models.Application, error) {
	principal := requestcontext.Principal(ctx)
	if principal.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	apps, err := s.apps.ListByApplicant(ctx, principal.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// ListAll returns applications matching the filter, newest first.
// Staff/admin only.
func (s *Service) ListAll(ctx context.Context, filter store.Filter) ([]*models.Application, error) {
	principal := requestcontext.Principal(ctx)
	if err := authz.Check(principal, authz.ActionListAllApplications); err != nil {
		return nil, err
	}

	apps, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

func wrapAppErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "Application not found")
	case dErrors.HasCode(err, dErrors.CodeValidation),
		dErrors.HasCode(err, dErrors.CodeInvalidInput),
		dErrors.HasCode(err, dErrors.CodeInvariantViolation):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "application store failure")
	}
}
