package testutil

import (
	"context"
	"testing"

	"github.com/leapstack-labs/incomeshare/internal/state"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Entities seeded by NewSeededStore, in insertion order.
var Entities = []core.Entity{
	{Code: "USA", Name: "United States of America", RegionGroup: "021"},
	{Code: "GBR", Name: "United Kingdom", RegionGroup: "154"},
	{Code: "FRA", Name: "France", RegionGroup: "155"},
	{Code: "DEU", Name: "Germany", RegionGroup: "155"},
}

// Regions and SubRegions seeded by NewSeededStore.
var (
	Regions = []core.Region{
		{Code: "019", Name: "Americas"},
		{Code: "150", Name: "Europe"},
	}
	SubRegions = []core.SubRegion{
		{Code: "021", Name: "Northern America", RegionCode: "019"},
		{Code: "154", Name: "Northern Europe", RegionCode: "150"},
		{Code: "155", Name: "Western Europe", RegionCode: "150"},
	}
)

// SeedObservation is one fixture observation.
type SeedObservation struct {
	Code   string
	Period int
	Value  string
}

// Observations seeded by NewSeededStore. DEU deliberately has none.
var Observations = []SeedObservation{
	{"USA", 2019, "20.1"},
	{"USA", 2020, "20.5"},
	{"GBR", 2020, "13.2"},
	{"FRA", 2015, "11.2"},
	{"FRA", 2016, "11.4"},
	{"FRA", 2017, "11.6"},
	{"FRA", 2018, "11.8"},
}

// NewMemoryStore returns a migrated, empty in-memory store closed on cleanup.
func NewMemoryStore(t testing.TB) *state.SQLiteStore {
	t.Helper()

	store := state.NewSQLiteStore(NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

// NewSeededStore returns an in-memory store holding the fixture geography,
// Entities and Observations.
func NewSeededStore(t testing.TB) *state.SQLiteStore {
	t.Helper()
	ctx := context.Background()

	store := NewMemoryStore(t)
	require.NoError(t, store.SaveRegions(ctx, Regions, SubRegions))
	require.NoError(t, store.SaveEntities(ctx, Entities))
	for _, o := range Observations {
		_, err := store.InsertObservation(ctx, o.Code, o.Period, decimal.RequireFromString(o.Value))
		require.NoError(t, err)
	}
	return store
}

// ObservationAt returns the stored observation of the entity at the period.
func ObservationAt(t testing.TB, store core.EntityStore, code string, period int) core.Observation {
	t.Helper()

	obs, err := store.GetObservations(context.Background(), code)
	require.NoError(t, err)
	for _, o := range obs {
		if o.Period == period {
			return o
		}
	}
	t.Fatalf("no observation for %s at %d", code, period)
	return core.Observation{}
}
