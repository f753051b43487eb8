package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/modules/catalog"
	"github.com/physiokit/physiokit/pkg/clock"
	"github.com/physiokit/physiokit/pkg/statemachine"
)

// Service is the subscription lifecycle engine: trial registration,
// entitlement snapshots, plan upgrades and cancellation. All time-dependent
// decisions go through the injected clock.
type Service struct {
	store     Store
	catalog   *catalog.Catalog
	clock     clock.Clock
	lifecycle *statemachine.Machine
	log       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger attaches a logger for non-fatal diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(store Store, cat *catalog.Catalog, opts ...Option) *Service {
	if store == nil {
		panic("subscription: Store is required")
	}
	if cat == nil {
		panic("subscription: Catalog is required")
	}

	s := &Service{
		store:     store,
		catalog:   cat,
		clock:     clock.System{},
		lifecycle: newLifecycle(),
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the cabinet's current subscription row.
func (s *Service) Current(ctx context.Context, scope cabinet.Scope) (*Subscription, error) {
	return s.store.Current(ctx, scope)
}

// Info returns the entitlement snapshot for the cabinet at the current
// instant. A cabinet without any subscription gets a zero snapshot with
// HasSubscription false, not an error.
func (s *Service) Info(ctx context.Context, scope cabinet.Scope) (Entitlement, error) {
	sub, err := s.store.Current(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return Entitlement{}, nil
		}
		return Entitlement{}, fmt.Errorf("load subscription: %w", err)
	}

	return ComputeEntitlement(sub, s.planFor(sub), s.clock.Now()), nil
}

// UpgradeResult reports what an upgrade actually did with the dates.
type UpgradeResult struct {
	Subscription *Subscription

	// LeftoverDays is the number of whole trial days that were still left
	// and preserved by starting the paid period at the trial end. Zero when
	// the paid period started immediately.
	LeftoverDays int

	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Upgrade moves the cabinet's subscription to the given paid plan.
//
// When the trial is still running and no paid period has started, the new
// paid period is anchored at the trial end so the remaining trial days are
// kept; the persisted status stays trialing until the paid window opens.
// In every other case the paid window starts now and the subscription is
// active immediately, which is also how expired and canceled subscriptions
// are revived.
func (s *Service) Upgrade(ctx context.Context, scope cabinet.Scope, planID string) (UpgradeResult, error) {
	plan, err := s.catalog.Get(planID)
	if err != nil {
		return UpgradeResult{}, err
	}
	if !plan.Active {
		return UpgradeResult{}, ErrPlanInactive
	}
	if plan.Trial {
		return UpgradeResult{}, ErrPlanNotPurchasable
	}

	var result UpgradeResult

	sub, err := s.store.Mutate(ctx, scope, func(sub *Subscription) error {
		now := s.clock.Now()

		var periodStart time.Time
		event := eventActivate
		if sub.InTrialAt(now) && !sub.PaidPeriodStartedAt(now) {
			periodStart = sub.TrialEnd.UTC()
			result.LeftoverDays = DaysLeftCeil(*sub.TrialEnd, now)
			if sub.Status == StatusTrialing {
				event = eventSelectPlan
			}
		} else {
			periodStart = now
		}
		periodEnd := plan.PeriodEndFrom(periodStart)

		next, err := fire(ctx, s.lifecycle, sub.Status, event)
		if err != nil {
			return errors.Join(ErrInvalidState, err)
		}

		sub.PlanID = plan.ID
		sub.Status = next
		sub.CurrentPeriodStart = &periodStart
		sub.CurrentPeriodEnd = &periodEnd
		sub.CancelAtPeriodEnd = false
		sub.UpdatedAt = now

		result.PeriodStart = periodStart
		result.PeriodEnd = periodEnd
		return nil
	})
	if err != nil {
		return UpgradeResult{}, err
	}

	s.log.InfoContext(ctx, "subscription upgraded",
		slog.String("plan_id", plan.ID),
		slog.Int("leftover_days", result.LeftoverDays),
		slog.Time("period_end", result.PeriodEnd),
	)

	result.Subscription = sub
	return result, nil
}

// Cancel marks the subscription to stop at the end of the current paid
// period, or cancels it immediately when no paid period is running.
// Calling it again is a no-op.
func (s *Service) Cancel(ctx context.Context, scope cabinet.Scope) (*Subscription, error) {
	sub, err := s.store.Mutate(ctx, scope, func(sub *Subscription) error {
		if sub.IsCanceled() || sub.CancelAtPeriodEnd {
			return nil
		}

		now := s.clock.Now()
		sub.CancelAtPeriodEnd = true

		if !sub.InPaidPeriodAt(now) {
			next, err := fire(ctx, s.lifecycle, sub.Status, eventCancel)
			if err != nil {
				return errors.Join(ErrInvalidState, err)
			}
			sub.Status = next
		}

		sub.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "subscription canceled",
		slog.String("status", string(sub.Status)),
		slog.Bool("cancel_at_period_end", sub.CancelAtPeriodEnd),
	)
	return sub, nil
}

// RegisterTrial creates the cabinet's first subscription on the given trial
// plan inside the caller's transaction, so the cabinet, its owner and the
// trial commit all-or-nothing.
func (s *Service) RegisterTrial(ctx context.Context, tx pgx.Tx, cabinetID uuid.UUID, trialPlanID string) (*Subscription, error) {
	plan, err := s.catalog.Get(trialPlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Trial {
		return nil, fmt.Errorf("%w: plan %s is not a trial plan", ErrInvalidState, plan.ID)
	}
	if !plan.Active {
		return nil, ErrPlanInactive
	}

	now := s.clock.Now()
	trialEnd := plan.TrialEndsAt(now)

	sub := &Subscription{
		ID:         uuid.New(),
		CabinetID:  cabinetID,
		PlanID:     plan.ID,
		Status:     StatusTrialing,
		TrialStart: &now,
		TrialEnd:   &trialEnd,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateTx(ctx, tx, sub); err != nil {
		return nil, fmt.Errorf("create trial subscription: %w", err)
	}
	return sub, nil
}

// ApplyProviderIDs records the billing provider's customer and subscription
// identifiers after the first successful checkout, so later webhook events
// and portal links can be reconciled.
func (s *Service) ApplyProviderIDs(ctx context.Context, scope cabinet.Scope, customerID, providerSubID string) error {
	_, err := s.store.Mutate(ctx, scope, func(sub *Subscription) error {
		if customerID != "" {
			sub.ProviderCustomerID = customerID
		}
		if providerSubID != "" {
			sub.ProviderSubID = providerSubID
		}
		sub.UpdatedAt = s.clock.Now()
		return nil
	})
	return err
}

// planFor resolves the catalog entry referenced by the subscription,
// tolerating retired plans.
func (s *Service) planFor(sub *Subscription) *catalog.Plan {
	plan, err := s.catalog.Get(sub.PlanID)
	if err != nil {
		s.log.Warn("subscription references unknown plan", slog.String("plan_id", sub.PlanID))
		return nil
	}
	return &plan
}
