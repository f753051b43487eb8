package catalog

import (
	"context"
	"slices"
	"sync"
)

type memorySource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewMemorySource returns an in-memory Source holding a deep copy of the
// given plans. Panics when no plans are provided so a service cannot start
// with an empty catalog. Copying keeps later mutations of the caller's
// slices from leaking into the source.
func NewMemorySource(plans ...Plan) Source {
	if len(plans) == 0 {
		panic("catalog: at least one plan is required")
	}
	copied := make(map[string]Plan, len(plans))
	for _, plan := range plans {
		plan.Features = slices.Clone(plan.Features)
		copied[plan.ID] = plan
	}
	return &memorySource{plans: copied}
}

func (s *memorySource) Load(ctx context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Plan, len(s.plans))
	for id, plan := range s.plans {
		plan.Features = slices.Clone(plan.Features)
		out[id] = plan
	}
	return out, nil
}
