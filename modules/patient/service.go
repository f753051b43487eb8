package patient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/modules/catalog"
	"github.com/physiokit/physiokit/modules/subscription"
	"github.com/physiokit/physiokit/pkg/clock"
)

// Service manages patient records and enforces the plan's patient quota on
// creation. Reads are never gated: a lapsed cabinet can still see its data,
// it just cannot add to it.
type Service struct {
	store Store
	subs  *subscription.Service
	clock clock.Clock
	log   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(store Store, subs *subscription.Service, opts ...Option) *Service {
	if store == nil {
		panic("patient: Store is required")
	}
	if subs == nil {
		panic("patient: subscription service is required")
	}

	s := &Service{
		store: store,
		subs:  subs,
		clock: clock.System{},
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a patient after checking the subscription entitlement: the
// cabinet needs a live trial or paid period, and headroom under the plan's
// patient quota.
func (s *Service) Create(ctx context.Context, scope cabinet.Scope, in Input) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ent, err := s.subs.Info(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("check entitlement: %w", err)
	}
	if !ent.HasSubscription || ent.Expired || ent.Status == subscription.StatusCanceled {
		return nil, ErrSubscriptionRequired
	}
	if ent.MaxPatients != catalog.Unlimited {
		count, err := s.store.CountActive(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("count patients: %w", err)
		}
		if count >= ent.MaxPatients {
			return nil, fmt.Errorf("%w: %d/%s", ErrQuotaReached, count, ent.MaxPatientsLabel)
		}
	}

	now := s.clock.Now()
	p := &Patient{
		ID:        uuid.New(),
		CabinetID: scope.CabinetID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, scope, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}

	s.log.InfoContext(ctx, "patient created", slog.String("patient_id", p.ID.String()))
	return p, nil
}

// Get returns one patient record.
func (s *Service) Get(ctx context.Context, scope cabinet.Scope, id uuid.UUID) (*Patient, error) {
	return s.store.Get(ctx, scope, id)
}

// List returns the cabinet's patients.
func (s *Service) List(ctx context.Context, scope cabinet.Scope, includeArchived bool) ([]Patient, error) {
	return s.store.List(ctx, scope, includeArchived)
}

// Update rewrites the caller-editable fields of a patient.
func (s *Service) Update(ctx context.Context, scope cabinet.Scope, id uuid.UUID, in Input) (*Patient, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.Email = in.Email
	p.Phone = in.Phone
	p.UpdatedAt = s.clock.Now()

	if err := s.store.Update(ctx, scope, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Archive removes the patient from the active roster, freeing a quota slot.
// Archiving an already archived patient is a no-op.
func (s *Service) Archive(ctx context.Context, scope cabinet.Scope, id uuid.UUID) error {
	p, err := s.store.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if p.Archived {
		return nil
	}

	p.Archived = true
	p.UpdatedAt = s.clock.Now()
	return s.store.Update(ctx, scope, p)
}
