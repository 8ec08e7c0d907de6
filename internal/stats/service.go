// Package stats assembles the administrator dashboard: portal totals, the
// status breakdown, recent submissions, and the most-applied-for services.
package stats

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
	appstore "github.com/estdev3690/digital-e-gram-panchayat/internal/application/store"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/authz"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/requestcontext"
)

const (
	recentLimit  = 5
	popularLimit = 5
)

// ApplicationStats is the aggregate view of the application repository.
type ApplicationStats interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.Status) (int64, error)
	Recent(ctx context.Context, limit int) ([]*models.Application, error)
	CountByService(ctx context.Context, limit int) ([]appstore.ServiceCount, error)
}

// Counter is the shared counting contract of the user and catalog stores.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Dashboard is the admin overview payload.
type Dashboard struct {
	TotalUsers        int64                   `json:"total_users"`
	TotalServices     int64                   `json:"total_services"`
	TotalApplications int64                   `json:"total_applications"`
	ByStatus          map[string]int64        `json:"applications_by_status"`
	Recent            []*models.Application   `json:"recent_applications"`
	PopularServices   []appstore.ServiceCount `json:"popular_services"`
}

type Service struct {
	apps     ApplicationStats
	users    Counter
	services Counter
	logger   *slog.Logger
}

func NewService(apps ApplicationStats, users, services Counter, logger *slog.Logger) *Service {
	return &Service{apps: apps, users: users, services: services, logger: logger}
}

// Dashboard gathers the admin overview. The independent aggregates are
// fetched concurrently; one failure fails the whole request.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if err := authz.Check(requestcontext.Principal(ctx), authz.ActionViewAdminStats); err != nil {
		return nil, err
	}

	d := &Dashboard{ByStatus: make(map[string]int64)}
	statuses := []models.Status{
		models.StatusPending, models.StatusUnderReview,
		models.StatusApproved, models.StatusRejected,
	}
	counts := make([]int64, len(statuses))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalUsers, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalServices, err = s.services.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalApplications, err = s.apps.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Recent, err = s.apps.Recent(gctx, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		d.PopularServices, err = s.apps.CountByService(gctx, popularLimit)
		return err
	})
	for i, status := range statuses {
		g.Go(func() (err error) {
			counts[i], err = s.apps.CountByStatus(gctx, status)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to gather dashboard stats")
	}
	for i, status := range statuses {
		d.ByStatus[status.String()] = counts[i]
	}
	return d, nil
}
