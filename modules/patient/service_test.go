package patient_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/modules/catalog"
	"github.com/physiokit/physiokit/modules/patient"
	"github.com/physiokit/physiokit/modules/subscription"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time          { return c.now.UTC() }
func (c *stepClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	svc   *patient.Service
	subs  *subscription.Service
	clock *stepClock
	scope cabinet.Scope
}

// newFixture registers a trial limited to three patients.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	trial := catalog.Plan{
		ID: "trial", Name: "Essai gratuit",
		Trial: true, TrialDays: 7, MaxPatients: 3, Active: true,
	}
	monthly := catalog.Plan{
		ID: "pri_cabinet_monthly", Name: "Cabinet",
		Price:        catalog.Money{Amount: 2990, Currency: "EUR"},
		DurationDays: 30, MaxPatients: catalog.Unlimited, Active: true,
	}
	cat, err := catalog.New(context.Background(), catalog.NewMemorySource(trial, monthly))
	require.NoError(t, err)

	clk := &stepClock{now: baseTime}
	subs := subscription.NewService(subscription.NewMemoryStore(), cat, subscription.WithClock(clk))
	svc := patient.NewService(patient.NewMemoryStore(), subs, patient.WithClock(clk))

	scope := cabinet.NewScope(uuid.New())
	_, err = subs.RegisterTrial(context.Background(), nil, scope.CabinetID(), "trial")
	require.NoError(t, err)

	return &fixture{svc: svc, subs: subs, clock: clk, scope: scope}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("trial quota of three is enforced", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for i, name := range []string{"Alice", "Bruno", "Chloe"} {
			_, err := f.svc.Create(context.Background(), f.scope, patient.Input{FirstName: name})
			require.NoError(t, err, "patient %d", i)
		}

		_, err := f.svc.Create(context.Background(), f.scope, patient.Input{FirstName: "Denis"})
		assert.ErrorIs(t, err, patient.ErrQuotaReached)
	})

	t.Run("archiving frees a quota slot", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		var last *patient.Patient
		for _, name := range []string{"Alice", "Bruno", "Chloe"} {
			p, err := f.svc.Create(context.Background(), f.scope, patient.Input{FirstName: name})
			require.NoError(t, err)
			last = p
		}

		require.NoError(t, f.svc.Archive(context.Background(), f.scope, last.ID))

		_, err := f.svc.Create(context.Background(), f.scope, patient.Input{FirstName: "Denis"})
		assert.NoError(t, err)
	})

	t.Run("unlimited plan lifts the quota", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.subs.Upgrade(context.Background(), f.scope, "pri_cabinet_monthly")
		require.NoError(t, err)

		for i := range 10 {
			_, err := f.svc.Create(context.Background(), f.scope, patient.Input{
				FirstName: "Patient", LastName: string(rune('A' + i)),
			})
			require.NoError(t, err)
		}
	})

	t.Run("expired subscription blocks creation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.clock.Advance(8 * 24 * time.Hour)

		_, err := f.svc.Create(context.Background(), f.scope, patient.Input{FirstName: "Alice"})
		assert.ErrorIs(t, err, patient.ErrSubscriptionRequired)
	})

	t.Run("canceled subscription blocks creation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.subs.Cancel(context.Background(), f.scope)
		require.NoError(t, err)

		_, err = f.svc.Create(context.Background(), f.scope, patient.Input{FirstName: "Alice"})
		assert.ErrorIs(t, err, patient.ErrSubscriptionRequired)
	})

	t.Run("name is required", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), f.scope, patient.Input{Email: "a@b.c"})
		assert.ErrorIs(t, err, patient.ErrNameRequired)
	})
}

func TestTenantIsolation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), f.scope, patient.Input{FirstName: "Alice"})
	require.NoError(t, err)

	other := cabinet.NewScope(uuid.New())
	_, err = f.svc.Get(context.Background(), other, p.ID)
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)

	list, err := f.svc.List(context.Background(), other, true)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateAndList(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), f.scope, patient.Input{FirstName: "alice", Email: "ALICE@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", p.Email, "email normalized")

	updated, err := f.svc.Update(context.Background(), f.scope, p.ID, patient.Input{
		FirstName: "Alice", LastName: "Durand", Phone: "+33 6 12 34 56 78",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Durand", updated.FullName())

	require.NoError(t, f.svc.Archive(context.Background(), f.scope, p.ID))
	require.NoError(t, f.svc.Archive(context.Background(), f.scope, p.ID), "archive is idempotent")

	active, err := f.svc.List(context.Background(), f.scope, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.svc.List(context.Background(), f.scope, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Archived)
}
