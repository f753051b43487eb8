package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiokit/physiokit/modules/catalog"
)

func trialPlan() catalog.Plan {
	return catalog.Plan{
		ID:          "trial",
		Name:        "Essai gratuit",
		Trial:       true,
		TrialDays:   7,
		MaxPatients: 3,
		Active:      true,
	}
}

func paidPlan() catalog.Plan {
	return catalog.Plan{
		ID:           "pri_cabinet_monthly",
		Name:         "Cabinet",
		Price:        catalog.Money{Amount: 2990, Currency: "EUR"},
		Interval:     catalog.BillingIntervalMonthly,
		DurationDays: 30,
		MaxPatients:  catalog.Unlimited,
		Features:     []catalog.Feature{catalog.FeatureAgenda, catalog.FeatureBilling},
		Active:       true,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("loads valid catalog", func(t *testing.T) {
		t.Parallel()
		c, err := catalog.New(ctx, catalog.NewMemorySource(trialPlan(), paidPlan()))
		require.NoError(t, err)

		plan, err := c.Get("pri_cabinet_monthly")
		require.NoError(t, err)
		assert.Equal(t, "Cabinet", plan.Name)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		c, err := catalog.New(ctx, catalog.NewMemorySource(trialPlan()))
		require.NoError(t, err)

		_, err = c.Get("missing")
		assert.ErrorIs(t, err, catalog.ErrPlanNotFound)
	})

	t.Run("trial plan lookup", func(t *testing.T) {
		t.Parallel()
		c, err := catalog.New(ctx, catalog.NewMemorySource(trialPlan(), paidPlan()))
		require.NoError(t, err)

		plan, err := c.TrialPlan()
		require.NoError(t, err)
		assert.Equal(t, "trial", plan.ID)
		assert.Equal(t, int64(3), plan.MaxPatients)
	})

	t.Run("no trial plan configured", func(t *testing.T) {
		t.Parallel()
		c, err := catalog.New(ctx, catalog.NewMemorySource(paidPlan()))
		require.NoError(t, err)

		_, err = c.TrialPlan()
		assert.ErrorIs(t, err, catalog.ErrNoTrialPlan)
	})

	t.Run("purchasable excludes trial and inactive", func(t *testing.T) {
		t.Parallel()
		retired := paidPlan()
		retired.ID = "pri_retired"
		retired.Active = false

		c, err := catalog.New(ctx, catalog.NewMemorySource(trialPlan(), paidPlan(), retired))
		require.NoError(t, err)

		plans := c.Purchasable()
		require.Len(t, plans, 1)
		assert.Equal(t, "pri_cabinet_monthly", plans[0].ID)
	})

	t.Run("rejects invalid plan", func(t *testing.T) {
		t.Parallel()
		bad := paidPlan()
		bad.DurationDays = 0

		_, err := catalog.New(ctx, catalog.NewMemorySource(bad))
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("rejects trial plan with price", func(t *testing.T) {
		t.Parallel()
		bad := trialPlan()
		bad.Price = catalog.Money{Amount: 100, Currency: "EUR"}

		_, err := catalog.New(ctx, catalog.NewMemorySource(bad))
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	t.Run("parses YAML catalog", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
plans:
  - id: trial
    name: Essai gratuit
    trial: true
    trial_days: 7
    max_patients: 3
    active: true
  - id: pri_cabinet_monthly
    name: Cabinet
    price: {amount: 2990, currency: EUR}
    interval: monthly
    duration_days: 30
    max_patients: -1
    active: true
`), 0o644))

		c, err := catalog.New(context.Background(), catalog.NewFileSource(path))
		require.NoError(t, err)

		plan, err := c.Get("pri_cabinet_monthly")
		require.NoError(t, err)
		assert.Equal(t, int64(2990), plan.Price.Amount)
		assert.Equal(t, catalog.Unlimited, plan.MaxPatients)

		trial, err := c.TrialPlan()
		require.NoError(t, err)
		assert.Equal(t, 7, trial.TrialDays)
	})

	t.Run("duplicate plan IDs rejected", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "plans.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
plans:
  - id: trial
    name: A
    trial: true
    trial_days: 7
    active: true
  - id: trial
    name: B
    trial: true
    trial_days: 7
    active: true
`), 0o644))

		_, err := catalog.NewFileSource(path).Load(context.Background())
		assert.ErrorIs(t, err, catalog.ErrInvalidPlanConfiguration)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := catalog.NewFileSource("/nonexistent/plans.yaml").Load(context.Background())
		assert.ErrorIs(t, err, catalog.ErrFailedToLoadPlans)
	})
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "gratuit", catalog.FormatPrice(catalog.Money{}))
	assert.Equal(t, "unlimited", catalog.FormatQuota(catalog.Unlimited))
	assert.Equal(t, "3", catalog.FormatQuota(3))
	assert.Equal(t, "0 days left", catalog.FormatDaysLeft(0))
	assert.Equal(t, "1 day left", catalog.FormatDaysLeft(1))
	assert.Equal(t, "7 days left", catalog.FormatDaysLeft(7))
}
