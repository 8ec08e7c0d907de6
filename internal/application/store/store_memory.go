package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/application/models"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
)

// InMemory keeps applications in mutex-guarded maps. Reads and writes copy
// records so callers can never alias store-internal state.
type InMemory struct {
	mu        sync.RWMutex
	byID      map[domain.ApplicationID]*models.Application
	byNumber  map[string]domain.ApplicationID
	insertSeq int64
	seqByID   map[domain.ApplicationID]int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[domain.ApplicationID]*models.Application),
		byNumber: make(map[string]domain.ApplicationID),
		seqByID:  make(map[domain.ApplicationID]int64),
	}
}

// Create persists a new application. The number uniqueness check and the
// insert happen under one lock, mirroring the database constraint.
func (s *InMemory) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[app.ID]; exists {
		return sentinel.ErrConflict
	}
	if _, taken := s.byNumber[app.Number]; taken {
		return sentinel.ErrConflict
	}
	s.insertSeq++
	s.byID[app.ID] = clone(app)
	s.byNumber[app.Number] = app.ID
	s.seqByID[app.ID] = s.insertSeq
	return nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(app), nil
}

// Execute atomically runs validate then mutate on one application while the
// store lock is held, so a status write and its remark append can never be
// split by a concurrent update. Returns the updated record.
func (s *InMemory) Execute(
	_ context.Context,
	id domain.ApplicationID,
	validate func(*models.Application) error,
	mutate func(*models.Application),
) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(app); err != nil {
		return nil, err
	}
	mutate(app)
	return clone(app), nil
}

func (s *InMemory) ListByApplicant(_ context.Context, applicant domain.UserID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Application
	for _, app := range s.byID {
		if app.Applicant == applicant {
			out = append(out, clone(app))
		}
	}
	s.sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) List(_ context.Context, filter Filter) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Application
	for _, app := range s.byID {
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(app.Number), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, clone(app))
	}
	s.sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *InMemory) CountByStatus(_ context.Context, status models.Status) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, app := range s.byID {
		if app.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) Recent(_ context.Context, limit int) ([]*models.Application, error) {
	all, err := s.List(context.Background(), Filter{})
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *InMemory) CountByService(_ context.Context, limit int) ([]ServiceCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.ServiceID]int64)
	for _, app := range s.byID {
		counts[app.Service]++
	}
	out := make([]ServiceCount, 0, len(counts))
	for svc, n := range counts {
		out = append(out, ServiceCount{Service: svc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sortNewestFirst orders by creation time, breaking ties by insert order so
// results are stable when many records share a timestamp (common in tests).
func (s *InMemory) sortNewestFirst(apps []*models.Application) {
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return s.seqByID[apps[i].ID] > s.seqByID[apps[j].ID]
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
}

func clone(app *models.Application) *models.Application {
	cp := *app
	cp.Documents = append([]models.Document(nil), app.Documents...)
	cp.Remarks = append([]models.Remark(nil), app.Remarks...)
	if app.PaymentDetails != nil {
		pd := *app.PaymentDetails
		cp.PaymentDetails = &pd
	}
	return &cp
}
