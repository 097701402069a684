package records

import (
	"context"
	"errors"
	"testing"

	"github.com/leapstack-labs/incomeshare/internal/state"
	"github.com/leapstack-labs/incomeshare/internal/testutil"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("connection refused")

func newTestStore(t *testing.T) *state.SQLiteStore {
	t.Helper()
	return testutil.NewSeededStore(t)
}

// faultyStore wraps a store and fails selected operations.
type faultyStore struct {
	core.EntityStore
	failUpdate      bool
	failGet         bool
	failDelete      bool
	failDeleteRange bool
	failList        bool
	failMaxPeriod   bool
	failFind        bool
}

func (f *faultyStore) UpdateObservationValue(ctx context.Context, id int64, v decimal.Decimal) (*core.Observation, error) {
	if f.failUpdate {
		return nil, errStoreDown
	}
	return f.EntityStore.UpdateObservationValue(ctx, id, v)
}

func (f *faultyStore) GetObservation(ctx context.Context, id int64) (*core.Observation, error) {
	if f.failGet {
		return nil, errStoreDown
	}
	return f.EntityStore.GetObservation(ctx, id)
}

func (f *faultyStore) DeleteObservation(ctx context.Context, id int64) (bool, error) {
	if f.failDelete {
		return false, errStoreDown
	}
	return f.EntityStore.DeleteObservation(ctx, id)
}

func (f *faultyStore) DeleteObservationRange(ctx context.Context, code string, start, end int) (int64, error) {
	if f.failDeleteRange {
		return 0, errStoreDown
	}
	return f.EntityStore.DeleteObservationRange(ctx, code, start, end)
}

func (f *faultyStore) GetObservations(ctx context.Context, code string) ([]core.Observation, error) {
	if f.failList {
		return nil, errStoreDown
	}
	return f.EntityStore.GetObservations(ctx, code)
}

func (f *faultyStore) GetMaxPeriod(ctx context.Context, code string) (int, bool, error) {
	if f.failMaxPeriod {
		return 0, false, errStoreDown
	}
	return f.EntityStore.GetMaxPeriod(ctx, code)
}

func (f *faultyStore) FindEntitiesExact(ctx context.Context, term string) ([]core.Entity, error) {
	if f.failFind {
		return nil, errStoreDown
	}
	return f.EntityStore.FindEntitiesExact(ctx, term)
}

func (f *faultyStore) ListEntities(ctx context.Context) ([]core.Entity, error) {
	if f.failFind {
		return nil, errStoreDown
	}
	return f.EntityStore.ListEntities(ctx)
}
