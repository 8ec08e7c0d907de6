package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
	appstore "github.com/estdev3690/digital-e-gram-panchayat/internal/application/store"
	catstore "github.com/estdev3690/digital-e-gram-panchayat/internal/catalog/store"
	"github.com/estdev3690/digital-e-gram-panchayat/internal/platform/logger"
	userstore "github.com/estdev3690/digital-e-gram-panchayat/internal/user/store"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/testutil"
)

type StatsSuite struct {
	suite.Suite
	apps    *appstore.InMemory
	service *Service
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsSuite))
}

func (s *StatsSuite) SetupTest() {
	s.apps = appstore.NewInMemory()
	s.service = NewService(s.apps, userstore.NewInMemory(), catstore.NewInMemory(),
		logger.New(logger.ParseLevel("error")))
}

func (s *StatsSuite) seedApplications(n int, svc domain.ServiceID) {
	now := time.Date(2025, 11, 12, 10, 0, 0, 0, time.UTC)
	for i := range n {
		app, err := models.NewApplication(domain.NewApplicationID(),
			fmt.Sprintf("GP2511%04d", i+1), svc, domain.NewUserID(),
			[]models.Document{{Name: "d.pdf", Locator: "blobs/d.pdf"}},
			now.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(err)
		s.Require().NoError(s.apps.Create(context.Background(), app))
	}
}

func (s *StatsSuite) TestDashboard() {
	serviceID := domain.NewServiceID()
	s.seedApplications(7, serviceID)

	s.Run("admin sees totals, recents, and popular services", func() {
		d, err := s.service.Dashboard(testutil.ContextAs(domain.RoleAdmin))
		s.Require().NoError(err)

		s.Equal(int64(7), d.TotalApplications)
		s.Equal(int64(7), d.ByStatus[models.StatusPending.String()])
		s.Zero(d.ByStatus[models.StatusApproved.String()])
		s.Require().Len(d.Recent, 5)
		s.Equal("GP25110007", d.Recent[0].Number)
		s.Require().Len(d.PopularServices, 1)
		s.Equal(int64(7), d.PopularServices[0].Count)
	})

	s.Run("staff are forbidden", func() {
		_, err := s.service.Dashboard(testutil.ContextAs(domain.RoleStaff))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("anonymous callers are unauthorized", func() {
		_, err := s.service.Dashboard(context.Background())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
