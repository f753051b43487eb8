package cabinet

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu       sync.Mutex
	cabinets map[uuid.UUID]Cabinet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cabinets: make(map[uuid.UUID]Cabinet)}
}

func (s *MemoryStore) CreateTx(_ context.Context, _ pgx.Tx, c *Cabinet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.cabinets {
		if existing.Name == c.Name {
			return ErrCabinetNameTaken
		}
	}
	s.cabinets[c.ID] = *c
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Cabinet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cabinets[id]
	if !ok {
		return nil, ErrCabinetNotFound
	}
	cp := c
	return &cp, nil
}

func (s *MemoryStore) CompleteOnboarding(_ context.Context, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cabinets[scope.CabinetID()]
	if !ok {
		return ErrCabinetNotFound
	}
	c.OnboardingDone = true
	s.cabinets[scope.CabinetID()] = c
	return nil
}
