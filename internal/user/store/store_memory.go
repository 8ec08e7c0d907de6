// Package store persists portal accounts.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/estdev3690/digital-e-gram-panchayat/internal/user/models"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/domain"
	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded account store for development and tests.
// Email and aadhar uniqueness are enforced under the same lock as the
// insert.
type InMemory struct {
	mu       sync.RWMutex
	byID     map[domain.UserID]*models.User
	byEmail  map[string]domain.UserID
	byAadhar map[string]domain.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:     make(map[domain.UserID]*models.User),
		byEmail:  make(map[string]domain.UserID),
		byAadhar: make(map[string]domain.UserID),
	}
}

func (s *InMemory) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byEmail[u.Email]; ok {
		return sentinel.ErrConflict
	}
	if u.AadharNumber != "" {
		if _, ok := s.byAadhar[u.AadharNumber]; ok {
			return sentinel.ErrConflict
		}
	}

	s.byID[u.ID] = clone(u)
	s.byEmail[u.Email] = u.ID
	if u.AadharNumber != "" {
		s.byAadhar[u.AadharNumber] = u.ID
	}
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(u), nil
}

func (s *InMemory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

// List returns every account ordered by creation time, newest first.
func (s *InMemory) List(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, clone(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (s *InMemory) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *InMemory) Update(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[u.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[u.ID] = clone(u)
	return nil
}

func clone(u *models.User) *models.User {
	cp := *u
	return &cp
}
