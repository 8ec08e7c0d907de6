package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/estdev3690/digital-e-gram-panchayat/pkg/platform/sentinel"
)

// InMemory keeps blobs in a map for development and tests.
type InMemory struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// PutErr, when set, is consulted before every Put. Test hook for
	// exercising intake cleanup paths.
	PutErr func(key string) error
}

func NewInMemory() *InMemory {
	return &InMemory{blobs: make(map[string][]byte)}
}

func (s *InMemory) Put(_ context.Context, key string, content io.Reader, _ int64, _ string) (string, error) {
	if err := s.failFor(key); err != nil {
		return "", err
	}
	buf, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = buf
	return key, nil
}

func (s *InMemory) Delete(_ context.Context, locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, locator)
	return nil
}

// Get returns the stored bytes for a locator. Test helper.
func (s *InMemory) Get(_ context.Context, locator string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buf, ok := s.blobs[locator]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return bytes.Clone(buf), nil
}

// Len reports how many blobs are stored. Test helper for orphan checks.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

func (s *InMemory) failFor(key string) error {
	if s.PutErr != nil {
		return s.PutErr(key)
	}
	return nil
}
