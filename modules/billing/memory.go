package billing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/physiokit/physiokit/modules/cabinet"
)

// MemoryPaymentStore is an in-process PaymentStore for tests.
type MemoryPaymentStore struct {
	mu       sync.Mutex
	payments []Payment
}

func NewMemoryPaymentStore() *MemoryPaymentStore {
	return &MemoryPaymentStore{}
}

func (s *MemoryPaymentStore) Create(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, *p)
	return nil
}

func (s *MemoryPaymentStore) SetStatusByTransaction(_ context.Context, transactionID string, status PaymentStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].TransactionID == transactionID {
			s.payments[i].Status = status
			s.payments[i].UpdatedAt = at
			return nil
		}
	}
	return ErrPaymentNotFound
}

func (s *MemoryPaymentStore) List(_ context.Context, scope cabinet.Scope) ([]Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Payment
	for _, p := range s.payments {
		if p.CabinetID == scope.CabinetID() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
