package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/google/uuid"
)

// PaddleConfig configures the Paddle provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"sandbox"`
}

// PaddleProvider implements Provider on the official Paddle SDK.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrProviderMisconfigured)
	}
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret is required", ErrProviderMisconfigured)
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: unknown environment %q", ErrProviderMisconfigured, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}, nil
}

func (p *PaddleProvider) CheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PlanID == "" {
		return nil, fmt.Errorf("%w: plan ID is required", ErrInvalidCheckoutRequest)
	}
	if req.CabinetID == uuid.Nil {
		return nil, fmt.Errorf("%w: cabinet ID is required", ErrInvalidCheckoutRequest)
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PlanID,
		Quantity: 1,
	})

	// cabinet_id in custom data is how the webhook finds its way back to
	// the tenant.
	txnReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"cabinet_id": req.CabinetID.String(),
		},
	}
	if req.Email != "" {
		txnReq.CustomData["email"] = req.Email
	}
	if req.SuccessURL != "" {
		txnReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	txn, err := p.client.TransactionsClient.CreateTransaction(ctx, txnReq)
	if err != nil {
		return nil, fmt.Errorf("create paddle transaction: %w", err)
	}
	if txn.Checkout == nil || txn.Checkout.URL == nil {
		return nil, fmt.Errorf("paddle returned no checkout URL for transaction %s", txn.ID)
	}

	return &CheckoutLink{
		URL:           *txn.Checkout.URL,
		TransactionID: txn.ID,
		ExpiresAt:     time.Now().UTC().Add(24 * time.Hour),
	}, nil
}

func (p *PaddleProvider) PortalLink(ctx context.Context, customerID, providerSubID string) (*PortalLink, error) {
	if customerID == "" {
		return nil, ErrNoProviderCustomer
	}

	req := &paddle.CreateCustomerPortalSessionRequest{CustomerID: customerID}
	if providerSubID != "" {
		req.SubscriptionIDs = []string{providerSubID}
	}

	session, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create paddle portal session: %w", err)
	}

	link := &PortalLink{
		URL:       session.URLs.General.Overview,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}
	for _, sub := range session.URLs.Subscriptions {
		if sub.ID == providerSubID {
			link.CancelURL = sub.CancelSubscription
			link.UpdatePaymentURL = sub.UpdateSubscriptionPaymentMethod
			break
		}
	}
	if link.URL == "" {
		return nil, fmt.Errorf("paddle returned no portal URL for customer %s", customerID)
	}
	return link, nil
}

func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error) {
	// The SDK verifier wants an *http.Request; rebuild one around the raw
	// payload so the HMAC covers exactly what Paddle signed.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build verification request: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWebhookSignature, err)
	}
	if !valid {
		return nil, ErrWebhookSignature
	}

	var envelope struct {
		EventType  string         `json:"event_type"`
		OccurredAt time.Time      `json:"occurred_at"`
		Data       map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}

	return normalizePaddleEvent(envelope.EventType, envelope.OccurredAt, envelope.Data), nil
}

// normalizePaddleEvent folds Paddle's subscription.* and transaction.*
// payload shapes into one Event.
func normalizePaddleEvent(eventType string, occurredAt time.Time, data map[string]any) *Event {
	ev := &Event{
		Type:          mapPaddleEventType(eventType),
		ProviderEvent: eventType,
		OccurredAt:    occurredAt.UTC(),
		Raw:           data,
	}

	str := func(key string) string {
		s, _ := data[key].(string)
		return s
	}

	ev.Status = str("status")
	ev.CustomerID = str("customer_id")

	switch {
	case strings.HasPrefix(eventType, "subscription."):
		ev.ProviderSubID = str("id")
	case strings.HasPrefix(eventType, "transaction."):
		ev.TransactionID = str("id")
		ev.ProviderSubID = str("subscription_id")
	}

	if custom, ok := data["custom_data"].(map[string]any); ok {
		if raw, ok := custom["cabinet_id"].(string); ok {
			if id, err := uuid.Parse(raw); err == nil {
				ev.CabinetID = id
			}
		}
	}

	if items, ok := data["items"].([]any); ok && len(items) > 0 {
		if item, ok := items[0].(map[string]any); ok {
			// subscription items nest the price object, transaction items
			// carry a flat price_id.
			if price, ok := item["price"].(map[string]any); ok {
				ev.PlanID, _ = price["id"].(string)
			}
			if ev.PlanID == "" {
				ev.PlanID, _ = item["price_id"].(string)
			}
		}
	}

	return ev
}

func mapPaddleEventType(paddleEvent string) EventType {
	switch paddleEvent {
	case "subscription.created":
		return EventSubscriptionCreated
	case "subscription.updated", "subscription.resumed":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionCanceled
	case "transaction.completed", "transaction.payment_succeeded":
		return EventPaymentSucceeded
	case "transaction.payment_failed":
		return EventPaymentFailed
	default:
		return EventUnknown
	}
}
