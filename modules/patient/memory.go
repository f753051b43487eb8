package patient

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/physiokit/physiokit/modules/cabinet"
)

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu       sync.Mutex
	patients map[uuid.UUID]Patient
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{patients: make(map[uuid.UUID]Patient)}
}

func (s *MemoryStore) Create(_ context.Context, scope cabinet.Scope, p *Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	cp.CabinetID = scope.CabinetID()
	s.patients[cp.ID] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, scope cabinet.Scope, id uuid.UUID) (*Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.patients[id]
	if !ok || p.CabinetID != scope.CabinetID() {
		return nil, ErrPatientNotFound
	}
	cp := p
	return &cp, nil
}

func (s *MemoryStore) Update(_ context.Context, scope cabinet.Scope, p *Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.patients[p.ID]
	if !ok || existing.CabinetID != scope.CabinetID() {
		return ErrPatientNotFound
	}
	cp := *p
	cp.CabinetID = existing.CabinetID
	s.patients[p.ID] = cp
	return nil
}

func (s *MemoryStore) List(_ context.Context, scope cabinet.Scope, includeArchived bool) ([]Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Patient
	for _, p := range s.patients {
		if p.CabinetID != scope.CabinetID() {
			continue
		}
		if p.Archived && !includeArchived {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Archived != out[j].Archived {
			return !out[i].Archived
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CountActive(_ context.Context, scope cabinet.Scope) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, p := range s.patients {
		if p.CabinetID == scope.CabinetID() && !p.Archived {
			count++
		}
	}
	return count, nil
}
