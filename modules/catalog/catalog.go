package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Source loads the plan catalog from some backing location.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// Catalog is the validated, immutable set of plans the application sells.
type Catalog struct {
	plans map[string]Plan
}

// New loads and validates plans from the source. A plan map key that does
// not match the plan's own ID is a configuration error caught here, before
// the application starts serving.
func New(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("catalog: Source is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", ErrInvalidPlanConfiguration)
	}

	for id, plan := range plans {
		if plan.ID != id {
			return nil, fmt.Errorf("%w: map key %s != plan.ID %s", ErrInvalidPlanConfiguration, id, plan.ID)
		}
		if err := plan.Validate(); err != nil {
			return nil, err
		}
	}

	return &Catalog{plans: plans}, nil
}

// Get returns the plan by ID. Returns ErrPlanNotFound when absent.
func (c *Catalog) Get(id string) (Plan, error) {
	plan, ok := c.plans[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

// TrialPlan returns the catalog's trial plan. Exactly one is expected; when
// several are configured the first active one wins.
func (c *Catalog) TrialPlan() (Plan, error) {
	for _, plan := range c.plans {
		if plan.Trial && plan.Active {
			return plan, nil
		}
	}
	return Plan{}, ErrNoTrialPlan
}

// Purchasable lists active non-trial plans, for the public pricing surface.
func (c *Catalog) Purchasable() []Plan {
	var out []Plan
	for _, plan := range c.plans {
		if plan.Active && !plan.Trial {
			out = append(out, plan)
		}
	}
	return out
}
