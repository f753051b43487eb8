package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/modules/catalog"
	"github.com/physiokit/physiokit/modules/subscription"
	"github.com/physiokit/physiokit/pkg/clock"
)

// Config holds billing service settings read from the environment.
type Config struct {
	CheckoutSuccessURL string `env:"BILLING_CHECKOUT_SUCCESS_URL,required"`
}

// Service glues the payment provider to the subscription engine: it hands
// out checkout and portal links and applies webhook events to the
// subscription state.
type Service struct {
	provider Provider
	payments PaymentStore
	subs     *subscription.Service
	catalog  *catalog.Catalog
	clock    clock.Clock
	log      *slog.Logger

	successURL string
}

// Option configures a Service.
type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(provider Provider, payments PaymentStore, subs *subscription.Service, cat *catalog.Catalog, cfg Config, opts ...Option) *Service {
	if provider == nil {
		panic("billing: Provider is required")
	}
	if payments == nil {
		panic("billing: PaymentStore is required")
	}
	if subs == nil {
		panic("billing: subscription service is required")
	}
	if cat == nil {
		panic("billing: Catalog is required")
	}

	s := &Service{
		provider:   provider,
		payments:   payments,
		subs:       subs,
		catalog:    cat,
		clock:      clock.System{},
		log:        slog.New(slog.DiscardHandler),
		successURL: cfg.CheckoutSuccessURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout creates a hosted checkout session for the plan and records a
// pending payment keyed by the provider transaction ID, so the later
// webhook can close the loop.
func (s *Service) Checkout(ctx context.Context, scope cabinet.Scope, planID, email string) (*CheckoutLink, error) {
	plan, err := s.catalog.Get(planID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, subscription.ErrPlanInactive
	}
	if plan.Trial {
		return nil, subscription.ErrPlanNotPurchasable
	}

	link, err := s.provider.CheckoutLink(ctx, CheckoutRequest{
		PlanID:     plan.ID,
		CabinetID:  scope.CabinetID(),
		Email:      email,
		SuccessURL: s.successURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout link: %w", err)
	}

	now := s.clock.Now()
	payment := &Payment{
		ID:            uuid.New(),
		CabinetID:     scope.CabinetID(),
		PlanID:        plan.ID,
		Amount:        plan.Price,
		Status:        PaymentPending,
		TransactionID: link.TransactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record pending payment: %w", err)
	}

	s.log.InfoContext(ctx, "checkout session created",
		slog.String("plan_id", plan.ID),
		slog.String("transaction_id", link.TransactionID),
	)
	return link, nil
}

// Portal returns a customer portal link for the cabinet's provider customer.
func (s *Service) Portal(ctx context.Context, scope cabinet.Scope) (*PortalLink, error) {
	sub, err := s.subs.Current(ctx, scope)
	if err != nil {
		return nil, err
	}
	if sub.ProviderCustomerID == "" {
		return nil, ErrNoProviderCustomer
	}
	return s.provider.PortalLink(ctx, sub.ProviderCustomerID, sub.ProviderSubID)
}

// Payments lists the cabinet's checkout records, newest first.
func (s *Service) Payments(ctx context.Context, scope cabinet.Scope) ([]Payment, error) {
	return s.payments.List(ctx, scope)
}

// HandleWebhook verifies, parses and applies one provider webhook delivery.
// Events that cannot be tied to a cabinet, and event types we do not act
// on, are logged and acknowledged so the provider stops retrying them.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(ctx, payload, signature)
	if err != nil {
		return err
	}

	log := s.log.With(
		slog.String("provider_event", event.ProviderEvent),
		slog.String("provider_sub_id", event.ProviderSubID),
	)

	if event.CabinetID == uuid.Nil {
		log.WarnContext(ctx, "webhook event carries no cabinet ID, skipping")
		return nil
	}
	scope := cabinet.NewScope(event.CabinetID)

	switch event.Type {
	case EventPaymentSucceeded, EventSubscriptionCreated:
		return s.applyActivation(ctx, scope, event, log)

	case EventSubscriptionCanceled:
		if _, err := s.subs.Cancel(ctx, scope); err != nil {
			return fmt.Errorf("cancel subscription from webhook: %w", err)
		}
		log.InfoContext(ctx, "subscription canceled by provider")
		return nil

	case EventPaymentFailed:
		if event.TransactionID != "" {
			if err := s.payments.SetStatusByTransaction(ctx, event.TransactionID, PaymentFailed, s.clock.Now()); err != nil && !errors.Is(err, ErrPaymentNotFound) {
				return err
			}
		}
		log.WarnContext(ctx, "payment failed", slog.String("status", event.Status))
		return nil

	case EventSubscriptionUpdated:
		// Period bookkeeping is local; only the provider identifiers are
		// worth refreshing here.
		if err := s.subs.ApplyProviderIDs(ctx, scope, event.CustomerID, event.ProviderSubID); err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
			return err
		}
		return nil

	default:
		log.DebugContext(ctx, "ignoring webhook event")
		return nil
	}
}

// applyActivation handles a successful charge: link provider identifiers,
// move the subscription onto the paid plan, close the pending payment.
func (s *Service) applyActivation(ctx context.Context, scope cabinet.Scope, event *Event, log *slog.Logger) error {
	if err := s.subs.ApplyProviderIDs(ctx, scope, event.CustomerID, event.ProviderSubID); err != nil {
		return fmt.Errorf("apply provider IDs: %w", err)
	}

	if event.PlanID != "" {
		res, err := s.subs.Upgrade(ctx, scope, event.PlanID)
		if err != nil {
			return fmt.Errorf("apply plan from webhook: %w", err)
		}
		log.InfoContext(ctx, "subscription activated by provider",
			slog.String("plan_id", event.PlanID),
			slog.Time("period_end", res.PeriodEnd),
		)
	}

	if event.TransactionID != "" {
		err := s.payments.SetStatusByTransaction(ctx, event.TransactionID, PaymentCompleted, s.clock.Now())
		if err != nil && !errors.Is(err, ErrPaymentNotFound) {
			return err
		}
	}
	return nil
}
