package records

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// DefaultBaselinePeriod is suggested for an entity without observations.
const DefaultBaselinePeriod = 2024

// Advancer computes the next period of an entity's series.
// The suggestion is not reserved; concurrent callers may receive the same one.
type Advancer struct {
	store    core.EntityStore
	baseline int
}

// NewAdvancer creates an advancer. A non-positive baseline selects
// DefaultBaselinePeriod.
func NewAdvancer(store core.EntityStore, baseline int) *Advancer {
	if baseline <= 0 {
		baseline = DefaultBaselinePeriod
	}
	return &Advancer{store: store, baseline: baseline}
}

// Baseline returns the period suggested for an empty series.
func (a *Advancer) Baseline() int {
	return a.baseline
}

// NextPeriod returns max(period)+1, or the baseline when the entity has
// no observations.
func (a *Advancer) NextPeriod(ctx context.Context, entityCode string) (int, error) {
	maxPeriod, ok, err := a.store.GetMaxPeriod(ctx, entityCode)
	if err != nil {
		return 0, fmt.Errorf("next period for %s: %w", entityCode, err)
	}
	if !ok {
		return a.baseline, nil
	}
	return maxPeriod + 1, nil
}
