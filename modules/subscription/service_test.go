package subscription_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/modules/catalog"
	"github.com/physiokit/physiokit/modules/subscription"
)

// stepClock is a settable clock so one test can walk a subscription
// through several days.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.UTC()
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc   *subscription.Service
	store *subscription.MemoryStore
	clock *stepClock
	scope cabinet.Scope
}

func newFixture(t *testing.T, plans ...catalog.Plan) *fixture {
	t.Helper()

	if len(plans) == 0 {
		plans = []catalog.Plan{trialCatalogPlan(), monthlyPlan()}
	}

	cat, err := catalog.New(context.Background(), catalog.NewMemorySource(plans...))
	require.NoError(t, err)

	store := subscription.NewMemoryStore()
	clk := &stepClock{now: baseTime}

	return &fixture{
		svc:   subscription.NewService(store, cat, subscription.WithClock(clk)),
		store: store,
		clock: clk,
		scope: cabinet.NewScope(uuid.New()),
	}
}

func (f *fixture) registerTrial(t *testing.T) *subscription.Subscription {
	t.Helper()
	sub, err := f.svc.RegisterTrial(context.Background(), nil, f.scope.CabinetID(), "trial")
	require.NoError(t, err)
	return sub
}

func TestRegisterTrial(t *testing.T) {
	t.Parallel()

	t.Run("creates a seven day trial", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		sub := f.registerTrial(t)
		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assert.Equal(t, f.scope.CabinetID(), sub.CabinetID)
		require.NotNil(t, sub.TrialStart)
		require.NotNil(t, sub.TrialEnd)
		assert.Equal(t, baseTime, *sub.TrialStart)
		assert.Equal(t, baseTime.AddDate(0, 0, 7), *sub.TrialEnd)
		assert.Nil(t, sub.CurrentPeriodStart)
		assert.Nil(t, sub.CurrentPeriodEnd)

		ent, err := f.svc.Info(context.Background(), f.scope)
		require.NoError(t, err)
		assert.True(t, ent.InTrial)
		assert.Equal(t, 7, ent.TrialDaysLeft)
		assert.Equal(t, int64(3), ent.MaxPatients)
	})

	t.Run("rejects non-trial plan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.svc.RegisterTrial(context.Background(), nil, f.scope.CabinetID(), "pri_cabinet_monthly")
		assert.ErrorIs(t, err, subscription.ErrInvalidState)
	})

	t.Run("rejects unknown plan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.svc.RegisterTrial(context.Background(), nil, f.scope.CabinetID(), "nope")
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
	})
}

func TestInfo(t *testing.T) {
	t.Parallel()

	t.Run("no subscription yields empty snapshot", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		ent, err := f.svc.Info(context.Background(), f.scope)
		require.NoError(t, err)
		assert.False(t, ent.HasSubscription)
	})

	t.Run("entitlement tracks the clock", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.registerTrial(t)

		f.clock.Advance(6*24*time.Hour + time.Hour)
		ent, err := f.svc.Info(context.Background(), f.scope)
		require.NoError(t, err)
		assert.True(t, ent.InTrial)
		assert.Equal(t, 1, ent.TrialDaysLeft)

		f.clock.Advance(23 * time.Hour)
		ent, err = f.svc.Info(context.Background(), f.scope)
		require.NoError(t, err)
		assert.False(t, ent.InTrial)
		assert.True(t, ent.Expired)
	})
}

func TestUpgrade(t *testing.T) {
	t.Parallel()

	t.Run("mid-trial upgrade preserves leftover days", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		sub := f.registerTrial(t)
		trialEnd := *sub.TrialEnd

		f.clock.Advance(2 * 24 * time.Hour) // 5 trial days left

		res, err := f.svc.Upgrade(context.Background(), f.scope, "pri_cabinet_monthly")
		require.NoError(t, err)
		assert.Equal(t, 5, res.LeftoverDays)
		assert.Equal(t, trialEnd, res.PeriodStart, "paid period anchored at trial end")
		assert.Equal(t, trialEnd.AddDate(0, 0, 30), res.PeriodEnd)
		assert.Equal(t, subscription.StatusTrialing, res.Subscription.Status,
			"persisted status stays trialing until the paid window opens")

		ent, err := f.svc.Info(context.Background(), f.scope)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusTrialingWithPaidPlan, ent.Status)
		assert.Equal(t, 5, ent.TrialDaysLeft)
		assert.False(t, ent.InPaidPeriod)
	})

	t.Run("paid period opens seamlessly after trial", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.registerTrial(t)
		f.clock.Advance(2 * 24 * time.Hour)

		_, err := f.svc.Upgrade(context.Background(), f.scope, "pri_cabinet_monthly")
		require.NoError(t, err)

		f.clock.Advance(5*24*time.Hour + time.Minute) // just past trial end
		ent, err := f.svc.Info(context.Background(), f.scope)
		require.NoError(t, err)
		assert.False(t, ent.InTrial)
		assert.True(t, ent.InPaidPeriod)
		assert.Equal(t, subscription.StatusActive, ent.Status)
		assert.Equal(t, 30, ent.PaidDaysLeft)
		assert.False(t, ent.Expired)
	})

	t.Run("upgrade after trial lapse activates immediately", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.registerTrial(t)
		f.clock.Advance(10 * 24 * time.Hour)
		now := f.clock.Now()

		res, err := f.svc.Upgrade(context.Background(), f.scope, "pri_cabinet_monthly")
		require.NoError(t, err)
		assert.Zero(t, res.LeftoverDays)
		assert.Equal(t, now, res.PeriodStart)
		assert.Equal(t, now.AddDate(0, 0, 30), res.PeriodEnd)
		assert.Equal(t, subscription.StatusActive, res.Subscription.Status)
	})

	t.Run("upgrade during a running paid period replaces the window", func(t *testing.T) {
		t.Parallel()
		annual := catalog.Plan{
			ID:           "pri_cabinet_annual",
			Name:         "Cabinet annuel",
			Price:        catalog.Money{Amount: 29900, Currency: "EUR"},
			Interval:     catalog.BillingIntervalAnnual,
			DurationDays: 365,
			MaxPatients:  catalog.Unlimited,
			Active:       true,
		}
		f := newFixture(t, trialCatalogPlan(), monthlyPlan(), annual)
		f.registerTrial(t)
		f.clock.Advance(8 * 24 * time.Hour)
		_, err := f.svc.Upgrade(context.Background(), f.scope, "pri_cabinet_monthly")
		require.NoError(t, err)

		f.clock.Advance(10 * 24 * time.Hour)
		now := f.clock.Now()
		res, err := f.svc.Upgrade(context.Background(), f.scope, "pri_cabinet_annual")
		require.NoError(t, err)
		assert.Equal(t, now, res.PeriodStart, "window replaced from now, no proration")
		assert.Equal(t, now.AddDate(0, 0, 365), res.PeriodEnd)
		assert.Equal(t, "pri_cabinet_annual", res.Subscription.PlanID)
	})

	t.Run("upgrade revives a canceled subscription", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.registerTrial(t)
		f.clock.Advance(10 * 24 * time.Hour)

		_, err := f.svc.Cancel(context.Background(), f.scope)
		require.NoError(t, err)

		res, err := f.svc.Upgrade(context.Background(), f.scope, "pri_cabinet_monthly")
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, res.Subscription.Status)
		assert.False(t, res.Subscription.CancelAtPeriodEnd, "cancellation flag cleared on upgrade")
	})

	t.Run("plan validation", func(t *testing.T) {
		t.Parallel()
		retired := monthlyPlan()
		retired.ID = "pri_retired"
		retired.Active = false
		f := newFixture(t, trialCatalogPlan(), monthlyPlan(), retired)
		f.registerTrial(t)

		_, err := f.svc.Upgrade(context.Background(), f.scope, "nope")
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)

		_, err = f.svc.Upgrade(context.Background(), f.scope, "pri_retired")
		assert.ErrorIs(t, err, subscription.ErrPlanInactive)

		_, err = f.svc.Upgrade(context.Background(), f.scope, "trial")
		assert.ErrorIs(t, err, subscription.ErrPlanNotPurchasable)
	})

	t.Run("no subscription", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.svc.Upgrade(context.Background(), f.scope, "pri_cabinet_monthly")
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})
}

func TestCancel(t *testing.T) {
	t.Parallel()

	t.Run("mid-trial cancel is immediate", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.registerTrial(t)

		sub, err := f.svc.Cancel(context.Background(), f.scope)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusCanceled, sub.Status)
		assert.True(t, sub.CancelAtPeriodEnd)

		ent, err := f.svc.Info(context.Background(), f.scope)
		require.NoError(t, err)
		assert.False(t, ent.Expired, "canceled is a deliberate state, not a lapse")
	})

	t.Run("cancel during paid period defers to period end", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.registerTrial(t)
		f.clock.Advance(10 * 24 * time.Hour)
		_, err := f.svc.Upgrade(context.Background(), f.scope, "pri_cabinet_monthly")
		require.NoError(t, err)

		f.clock.Advance(5 * 24 * time.Hour)
		sub, err := f.svc.Cancel(context.Background(), f.scope)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, sub.Status,
			"access continues until the paid window closes")
		assert.True(t, sub.CancelAtPeriodEnd)

		ent, err := f.svc.Info(context.Background(), f.scope)
		require.NoError(t, err)
		assert.True(t, ent.InPaidPeriod)
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.registerTrial(t)

		first, err := f.svc.Cancel(context.Background(), f.scope)
		require.NoError(t, err)

		second, err := f.svc.Cancel(context.Background(), f.scope)
		require.NoError(t, err)
		assert.Equal(t, first.Status, second.Status)
		assert.Equal(t, first.UpdatedAt, second.UpdatedAt, "repeat call changes nothing")
	})
}

func TestApplyProviderIDs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.registerTrial(t)

	err := f.svc.ApplyProviderIDs(context.Background(), f.scope, "ctm_123", "sub_456")
	require.NoError(t, err)

	sub, err := f.store.Current(context.Background(), f.scope)
	require.NoError(t, err)
	assert.Equal(t, "ctm_123", sub.ProviderCustomerID)
	assert.Equal(t, "sub_456", sub.ProviderSubID)

	// Empty values never clobber stored identifiers.
	err = f.svc.ApplyProviderIDs(context.Background(), f.scope, "", "")
	require.NoError(t, err)
	sub, err = f.store.Current(context.Background(), f.scope)
	require.NoError(t, err)
	assert.Equal(t, "ctm_123", sub.ProviderCustomerID)
}
