package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *InMemory
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.now = time.Date(2025, 11, 12, 10, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newApplication(number string, applicant domain.UserID, createdAt time.Time) *models.Application {
	app, err := models.NewApplication(domain.NewApplicationID(), number, domain.NewServiceID(), applicant,
		[]models.Document{{Name: "doc.pdf", Locator: "blobs/doc.pdf", UploadedAt: createdAt}}, createdAt)
	s.Require().NoError(err)
	return app
}

// =============================================================================
// Create Tests
// =============================================================================

func (s *MemoryStoreSuite) TestCreate() {
	s.Run("stores and retrieves an application", func() {
		app := s.newApplication("GP25110001", domain.NewUserID(), s.now)
		s.Require().NoError(s.store.Create(s.ctx, app))

		got, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(app.Number, got.Number)
	})

	s.Run("rejects a duplicate number", func() {
		first := s.newApplication("GP25110002", domain.NewUserID(), s.now)
		s.Require().NoError(s.store.Create(s.ctx, first))

		dup := s.newApplication("GP25110002", domain.NewUserID(), s.now)
		s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("returned copies do not alias store state", func() {
		app := s.newApplication("GP25110003", domain.NewUserID(), s.now)
		s.Require().NoError(s.store.Create(s.ctx, app))

		got, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		got.Remarks = append(got.Remarks, models.Remark{Comment: "tampered"})

		again, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Len(again.Remarks, 1)
	})
}

func (s *MemoryStoreSuite) TestCreateConcurrentSameNumber() {
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app := s.newApplication("GP25110099", domain.NewUserID(), s.now)
			err := s.store.Create(s.ctx, app)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, sentinel.ErrConflict):
				conflicts++
			default:
				s.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(1, created)
	s.Equal(workers-1, conflicts)
}

// =============================================================================
// FindByID Tests
// =============================================================================

func (s *MemoryStoreSuite) TestFindByID() {
	_, err := s.store.FindByID(s.ctx, domain.NewApplicationID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// =============================================================================
// Execute Tests
// =============================================================================

func (s *MemoryStoreSuite) TestExecute() {
	staff := domain.NewUserID()

	s.Run("applies validate then mutate atomically", func() {
		app := s.newApplication("GP25110010", domain.NewUserID(), s.now)
		s.Require().NoError(s.store.Create(s.ctx, app))

		updated, err := s.store.Execute(s.ctx, app.ID,
			func(a *models.Application) error {
				return a.CanUpdateStatus(models.StatusApproved, "approved")
			},
			func(a *models.Application) {
				a.ApplyStatusUpdate(models.StatusApproved, "approved", staff, s.now.Add(time.Hour))
			},
		)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, updated.Status)
		s.Len(updated.Remarks, 2)
	})

	s.Run("a failed validation leaves the record untouched", func() {
		app := s.newApplication("GP25110011", domain.NewUserID(), s.now)
		s.Require().NoError(s.store.Create(s.ctx, app))

		_, err := s.store.Execute(s.ctx, app.ID,
			func(a *models.Application) error {
				return a.CanUpdateStatus(models.StatusApproved, "")
			},
			func(a *models.Application) {
				a.ApplyStatusUpdate(models.StatusApproved, "", staff, s.now)
			},
		)
		s.Error(err)

		got, ferr := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(ferr)
		s.Equal(models.StatusPending, got.Status)
		s.Len(got.Remarks, 1)
	})

	s.Run("unknown id returns not found", func() {
		_, err := s.store.Execute(s.ctx, domain.NewApplicationID(),
			func(*models.Application) error { return nil },
			func(*models.Application) {},
		)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// =============================================================================
// Listing Tests
// =============================================================================

func (s *MemoryStoreSuite) TestListByApplicant() {
	applicant := domain.NewUserID()
	other := domain.NewUserID()

	older := s.newApplication("GP25110020", applicant, s.now)
	newer := s.newApplication("GP25110021", applicant, s.now.Add(time.Hour))
	foreign := s.newApplication("GP25110022", other, s.now)
	for _, app := range []*models.Application{older, newer, foreign} {
		s.Require().NoError(s.store.Create(s.ctx, app))
	}

	got, err := s.store.ListByApplicant(s.ctx, applicant)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("GP25110021", got[0].Number)
	s.Equal("GP25110020", got[1].Number)
}

func (s *MemoryStoreSuite) TestList() {
	applicant := domain.NewUserID()
	staff := domain.NewUserID()

	for i := range 3 {
		app := s.newApplication(fmt.Sprintf("GP251100%d", 30+i), applicant, s.now.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(s.store.Create(s.ctx, app))
	}
	approved := s.newApplication("GP25110040", applicant, s.now.Add(time.Hour))
	s.Require().NoError(s.store.Create(s.ctx, approved))
	_, err := s.store.Execute(s.ctx, approved.ID,
		func(a *models.Application) error { return nil },
		func(a *models.Application) {
			a.ApplyStatusUpdate(models.StatusApproved, "ok", staff, s.now.Add(2*time.Hour))
		},
	)
	s.Require().NoError(err)

	s.Run("no filter returns everything newest first", func() {
		got, err := s.store.List(s.ctx, Filter{})
		s.Require().NoError(err)
		s.Require().Len(got, 4)
		s.Equal("GP25110040", got[0].Number)
	})

	s.Run("status filter narrows results", func() {
		got, err := s.store.List(s.ctx, Filter{Status: models.StatusApproved})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("GP25110040", got[0].Number)
	})

	s.Run("search matches number substrings case-insensitively", func() {
		got, err := s.store.List(s.ctx, Filter{Search: "gp2511004"})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("GP25110040", got[0].Number)
	})

	s.Run("search with no match returns empty", func() {
		got, err := s.store.List(s.ctx, Filter{Search: "GP9999"})
		s.Require().NoError(err)
		s.Empty(got)
	})
}

// =============================================================================
// Aggregate Tests
// =============================================================================

func (s *MemoryStoreSuite) TestAggregates() {
	applicant := domain.NewUserID()
	serviceA := domain.NewServiceID()
	serviceB := domain.NewServiceID()

	mk := func(number string, svc domain.ServiceID, offset time.Duration) {
		app, err := models.NewApplication(domain.NewApplicationID(), number, svc, applicant,
			[]models.Document{{Name: "d.pdf", Locator: "blobs/d.pdf", UploadedAt: s.now}}, s.now.Add(offset))
		s.Require().NoError(err)
		s.Require().NoError(s.store.Create(s.ctx, app))
	}
	mk("GP25110050", serviceA, 0)
	mk("GP25110051", serviceA, time.Minute)
	mk("GP25110052", serviceB, 2*time.Minute)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), count)

	pending, err := s.store.CountByStatus(s.ctx, models.StatusPending)
	s.Require().NoError(err)
	s.Equal(int64(3), pending)

	recent, err := s.store.Recent(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal("GP25110052", recent[0].Number)

	byService, err := s.store.CountByService(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(byService, 2)
	s.Equal(serviceA, byService[0].Service)
	s.Equal(int64(2), byService[0].Count)
}
