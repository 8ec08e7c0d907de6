// Package store persists catalog entries.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/catalog/models"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded catalog store for development and tests.
type InMemory struct {
	mu   sync.RWMutex
	byID map[domain.ServiceID]*models.Service
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[domain.ServiceID]*models.Service)}
}

func (s *InMemory) Create(ctx context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[svc.ID]; ok {
		return sentinel.ErrConflict
	}
	s.byID[svc.ID] = clone(svc)
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.ServiceID) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(svc), nil
}

// List returns catalog entries ordered by title. With activeOnly set,
// inactive entries are omitted.
func (s *InMemory) List(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Service, 0, len(s.byID))
	for _, svc := range s.byID {
		if activeOnly && !svc.IsActive {
			continue
		}
		out = append(out, clone(svc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *InMemory) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *InMemory) Update(ctx context.Context, svc *models.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[svc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[svc.ID] = clone(svc)
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id domain.ServiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func clone(svc *models.Service) *models.Service {
	cp := *svc
	cp.RequiredDocuments = append([]string(nil), svc.RequiredDocuments...)
	return &cp
}
