package subscription

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/physiokit/physiokit/modules/cabinet"
)

// MemoryStore is an in-process Store for tests and local development.
type MemoryStore struct {
	mu   sync.Mutex
	subs []*Subscription
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Current(_ context.Context, scope cabinet.Scope) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.currentLocked(scope)
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *MemoryStore) CreateTx(_ context.Context, _ pgx.Tx, sub *Subscription) error {
	return s.Create(context.Background(), sub)
}

// Create inserts without a transaction. Test helper counterpart of CreateTx.
func (s *MemoryStore) Create(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sub
	s.subs = append(s.subs, &cp)
	return nil
}

func (s *MemoryStore) Mutate(_ context.Context, scope cabinet.Scope, fn func(sub *Subscription) error) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := s.currentLocked(scope)
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}

	cp := *sub
	if err := fn(&cp); err != nil {
		return nil, err
	}
	*sub = cp

	out := cp
	return &out, nil
}

func (s *MemoryStore) currentLocked(scope cabinet.Scope) *Subscription {
	var matches []*Subscription
	for _, sub := range s.subs {
		if sub.CabinetID == scope.CabinetID() {
			matches = append(matches, sub)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches[0]
}
