// Package service manages the service catalog: public reads for citizens,
// full CRUD for administrators.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/authz"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/catalog/models"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/requestcontext"
)

// Store is the catalog repository contract.
type Store interface {
	Create(ctx context.Context, svc *models.Service) error
	FindByID(ctx context.Context, id domain.ServiceID) (*models.Service, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Service, error)
	Update(ctx context.Context, svc *models.Service) error
	Delete(ctx context.Context, id domain.ServiceID) error
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CreateInput carries the fields for a new catalog entry.
type CreateInput struct {
	Title             string
	Description       string
	Category          string
	RequiredDocuments []string
	ProcessingTime    string
	Fees              int64
}

// Create adds a catalog entry. Admin only.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Service, error) {
	principal := requestcontext.Principal(ctx)
	if err := authz.Check(principal, authz.ActionManageCatalog); err != nil {
		return nil, err
	}

	svc, err := models.NewService(domain.NewServiceID(), in.Title, in.Description,
		in.Category, in.RequiredDocuments, in.ProcessingTime, in.Fees,
		principal.ID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, svc); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.InfoContext(ctx, "service created", "service_id", svc.ID.String(), "title", svc.Title)
	return svc, nil
}

// ListActive returns catalog entries open for applications. Public.
func (s *Service) ListActive(ctx context.Context) ([]*models.Service, error) {
	services, err := s.store.List(ctx, true)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return services, nil
}

// ListAll returns every catalog entry, inactive ones included. Admin only.
func (s *Service) ListAll(ctx context.Context) ([]*models.Service, error) {
	if err := authz.Check(requestcontext.Principal(ctx), authz.ActionManageCatalog); err != nil {
		return nil, err
	}
	services, err := s.store.List(ctx, false)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return services, nil
}

// Get returns one catalog entry. Public.
func (s *Service) Get(ctx context.Context, id domain.ServiceID) (*models.Service, error) {
	svc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return svc, nil
}

// Update applies a partial update to a catalog entry. Admin only.
func (s *Service) Update(ctx context.Context, id domain.ServiceID, update models.Update) (*models.Service, error) {
	if err := authz.Check(requestcontext.Principal(ctx), authz.ActionManageCatalog); err != nil {
		return nil, err
	}

	svc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := svc.Apply(update, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, svc); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.InfoContext(ctx, "service updated", "service_id", svc.ID.String())
	return svc, nil
}

// Delete removes a catalog entry. Admin only. Existing applications keep
// their service reference; reads resolve it best effort.
func (s *Service) Delete(ctx context.Context, id domain.ServiceID) error {
	if err := authz.Check(requestcontext.Principal(ctx), authz.ActionManageCatalog); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return wrapStoreErr(err)
	}
	s.logger.InfoContext(ctx, "service deleted", "service_id", id.String())
	return nil
}

// ResolveActive confirms the service exists and accepts applications.
func (s *Service) ResolveActive(ctx context.Context, id domain.ServiceID) error {
	svc, err := s.store.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "Service not found")
	}
	if err != nil {
		return wrapStoreErr(err)
	}
	if !svc.IsActive {
		return dErrors.New(dErrors.CodeNotFound, "Service is not accepting applications")
	}
	return nil
}

// Title resolves a service title for response projections.
func (s *Service) Title(ctx context.Context, id domain.ServiceID) (string, error) {
	svc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return "", wrapStoreErr(err)
	}
	return svc.Title, nil
}

func wrapStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "Service not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "Service already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "catalog store failure")
	}
}
