package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiokit/physiokit/modules/auth"
	"github.com/physiokit/physiokit/modules/billing"
	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/modules/catalog"
	"github.com/physiokit/physiokit/modules/httpapi"
	"github.com/physiokit/physiokit/modules/patient"
	"github.com/physiokit/physiokit/modules/subscription"
	"github.com/physiokit/physiokit/pkg/pg"
	"github.com/physiokit/physiokit/pkg/session"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time          { return c.now.UTC() }
func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeProvider struct {
	event *billing.Event
}

func (f *fakeProvider) CheckoutLink(_ context.Context, req billing.CheckoutRequest) (*billing.CheckoutLink, error) {
	return &billing.CheckoutLink{
		URL:           "https://checkout.example.com/txn_1",
		TransactionID: "txn_1",
	}, nil
}

func (f *fakeProvider) PortalLink(_ context.Context, customerID, _ string) (*billing.PortalLink, error) {
	return &billing.PortalLink{URL: "https://portal.example.com/" + customerID}, nil
}

func (f *fakeProvider) ParseWebhook(context.Context, []byte, string) (*billing.Event, error) {
	if f.event == nil {
		return nil, billing.ErrWebhookSignature
	}
	return f.event, nil
}

type api struct {
	srv      *httptest.Server
	clock    *stepClock
	provider *fakeProvider
	subs     *subscription.Service
}

func newAPI(t *testing.T) *api {
	t.Helper()

	trial := catalog.Plan{
		ID: "trial", Name: "Essai gratuit",
		Trial: true, TrialDays: 7, MaxPatients: 3, Active: true,
	}
	monthly := catalog.Plan{
		ID: "pri_cabinet_monthly", Name: "Cabinet",
		Price:        catalog.Money{Amount: 2990, Currency: "EUR"},
		Interval:     catalog.BillingIntervalMonthly,
		DurationDays: 30, MaxPatients: catalog.Unlimited, Active: true,
	}
	cat, err := catalog.New(context.Background(), catalog.NewMemorySource(trial, monthly))
	require.NoError(t, err)

	clk := &stepClock{now: baseTime}
	subs := subscription.NewService(subscription.NewMemoryStore(), cat, subscription.WithClock(clk))
	sessions := session.NewManager(session.NewMemoryStore(), session.Config{TTL: time.Hour}, clk)
	provider := &fakeProvider{}

	authSvc := auth.NewService(
		pg.NopRunner{},
		auth.NewMemoryUserStore(),
		cabinet.NewMemoryStore(),
		subs,
		sessions,
		auth.Config{BcryptCost: 4, TrialPlanID: "trial"},
		auth.WithClock(clk),
	)
	billingSvc := billing.NewService(provider, billing.NewMemoryPaymentStore(), subs, cat,
		billing.Config{CheckoutSuccessURL: "https://app.example.com/merci"},
		billing.WithClock(clk),
	)
	patientSvc := patient.NewService(patient.NewMemoryStore(), subs, patient.WithClock(clk))

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:          authSvc,
		Subscriptions: subs,
		Billing:       billingSvc,
		Patients:      patientSvc,
		Sessions:      sessions,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &api{srv: srv, clock: clk, provider: provider, subs: subs}
}

func (a *api) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (a *api) register(t *testing.T) (token string, cabinetID uuid.UUID) {
	t.Helper()

	resp := a.do(t, http.MethodPost, "/api/public/register", "", map[string]string{
		"email":        "kine@example.com",
		"password":     "correct-horse",
		"cabinet_name": "Cabinet Durand",
		"cabinet_type": "kinesitherapie",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	id, err := uuid.Parse(body["cabinet_id"].(string))
	require.NoError(t, err)
	return body["token"].(string), id
}

func TestRegisterAndStatus(t *testing.T) {
	t.Parallel()
	a := newAPI(t)
	token, _ := a.register(t)

	resp := a.do(t, http.MethodGet, "/api/cabinet/subscription-status", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, true, body["has_subscription"])
	assert.Equal(t, true, body["in_trial"])
	assert.Equal(t, float64(7), body["trial_days_left"])
	assert.Equal(t, "trialing", body["status"])
	assert.Equal(t, float64(3), body["max_patients"])
}

func TestUpgradeEndpoint(t *testing.T) {
	t.Parallel()
	a := newAPI(t)
	token, _ := a.register(t)
	a.clock.Advance(2 * 24 * time.Hour)

	resp := a.do(t, http.MethodPost, "/api/cabinet/upgrade-subscription", token,
		map[string]string{"plan_id": "pri_cabinet_monthly"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, float64(5), body["leftover_days"])
	assert.Equal(t, "trialing", body["status"])

	start, err := time.Parse(time.RFC3339, body["period_start"].(string))
	require.NoError(t, err)
	assert.Equal(t, baseTime.AddDate(0, 0, 7), start.UTC())

	// Status endpoint now reports the combined display state.
	resp = a.do(t, http.MethodGet, "/api/cabinet/subscription-status", token, nil)
	status := decode[map[string]any](t, resp)
	assert.Equal(t, "trialing_with_paid_plan", status["status"])

	t.Run("unknown plan", func(t *testing.T) {
		resp := a.do(t, http.MethodPost, "/api/cabinet/upgrade-subscription", token,
			map[string]string{"plan_id": "nope"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("trial plan is not purchasable", func(t *testing.T) {
		resp := a.do(t, http.MethodPost, "/api/cabinet/upgrade-subscription", token,
			map[string]string{"plan_id": "trial"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCancelEndpoint(t *testing.T) {
	t.Parallel()
	a := newAPI(t)
	token, _ := a.register(t)

	resp := a.do(t, http.MethodPost, "/api/cabinet/cancel-subscription", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "canceled", body["status"])

	// Second cancel is a no-op, same answer.
	resp = a.do(t, http.MethodPost, "/api/cabinet/cancel-subscription", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decode[map[string]any](t, resp)
	assert.Equal(t, "canceled", body["status"])
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()
	a := newAPI(t)

	for _, path := range []string{
		"/api/cabinet/subscription-status",
		"/api/cabinet/patients/",
	} {
		resp := a.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := a.do(t, http.MethodGet, "/api/cabinet/subscription-status", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()
	a := newAPI(t)
	a.register(t)

	resp := a.do(t, http.MethodPost, "/api/public/login", "", map[string]string{
		"email": "kine@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/public/login", "", map[string]string{
		"email": "kine@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPatientQuotaEndpoint(t *testing.T) {
	t.Parallel()
	a := newAPI(t)
	token, _ := a.register(t)

	for _, name := range []string{"Alice", "Bruno", "Chloe"} {
		resp := a.do(t, http.MethodPost, "/api/cabinet/patients/", token,
			map[string]string{"first_name": name})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := a.do(t, http.MethodPost, "/api/cabinet/patients/", token,
		map[string]string{"first_name": "Denis"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/cabinet/patients/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]map[string]any](t, resp)
	assert.Len(t, list, 3)
}

func TestPaddleWebhookEndpoint(t *testing.T) {
	t.Parallel()
	a := newAPI(t)
	token, cabinetID := a.register(t)

	a.provider.event = &billing.Event{
		Type:          billing.EventPaymentSucceeded,
		ProviderEvent: "transaction.completed",
		CabinetID:     cabinetID,
		CustomerID:    "ctm_1",
		ProviderSubID: "sub_1",
		PlanID:        "pri_cabinet_monthly",
	}

	resp := a.do(t, http.MethodPost, "/api/webhooks/paddle", "", map[string]string{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/cabinet/subscription-status", token, nil)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "trialing_with_paid_plan", body["status"])
	assert.Equal(t, "pri_cabinet_monthly", body["plan_id"])
}

func TestWebhookSignatureRejected(t *testing.T) {
	t.Parallel()
	a := newAPI(t)

	resp := a.do(t, http.MethodPost, "/api/webhooks/paddle", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	a := newAPI(t)

	resp := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
