package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSource loads the plan catalog from a YAML file:
//
//	plans:
//	  - id: trial
//	    name: Essai gratuit
//	    trial: true
//	    trial_days: 7
//	    max_patients: 3
//	    active: true
//	  - id: pri_cabinet_monthly
//	    name: Cabinet
//	    price: {amount: 2990, currency: EUR}
//	    interval: monthly
//	    duration_days: 30
//	    max_patients: -1
//	    active: true
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

func (s *FileSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]Plan, len(file.Plans))
	for _, plan := range file.Plans {
		if _, exists := plans[plan.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate plan ID %s", ErrInvalidPlanConfiguration, plan.ID)
		}
		plans[plan.ID] = plan
	}
	return plans, nil
}
