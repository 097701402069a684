package core

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrDuplicatePeriod is returned by InsertObservation when the entity already
// has an observation for the period.
var ErrDuplicatePeriod = errors.New("period already recorded")

// EntityStore is the narrow query contract the record layer consumes.
// Every method is a single round trip; none of them spans a transaction.
// Single-row lookups return nil, nil when the row does not exist.
type EntityStore interface {
	// Entity reads
	ListEntities(ctx context.Context) ([]Entity, error)
	GetEntity(ctx context.Context, code string) (*Entity, error)
	FindEntitiesExact(ctx context.Context, nameOrCode string) ([]Entity, error)
	FindEntitiesByNameSubstring(ctx context.Context, term string) ([]Entity, error)

	// Geography reads
	ListRegions(ctx context.Context) ([]Region, error)
	ListSubRegions(ctx context.Context) ([]SubRegion, error)

	// Observation reads
	GetObservations(ctx context.Context, entityCode string) ([]Observation, error)
	GetObservation(ctx context.Context, id int64) (*Observation, error)
	GetMaxPeriod(ctx context.Context, entityCode string) (int, bool, error)
	SearchLatest(ctx context.Context, keyword string) ([]LatestObservation, error)
	ListPeriods(ctx context.Context) ([]int, error)
	RankPeriod(ctx context.Context, period int, limit int, ascending bool) ([]LatestObservation, error)
	RankSubRegion(ctx context.Context, subRegionCode string, period int) ([]LatestObservation, error)
	MaxShareBySubRegion(ctx context.Context, regionCode string, period int) ([]SubRegionMax, error)

	// Observation writes
	InsertObservation(ctx context.Context, entityCode string, period int, value decimal.Decimal) (*Observation, error)
	UpdateObservationValue(ctx context.Context, id int64, value decimal.Decimal) (*Observation, error)
	DeleteObservation(ctx context.Context, id int64) (bool, error)
	DeleteObservationRange(ctx context.Context, entityCode string, startPeriod, endPeriod int) (int64, error)
}

// Store is an EntityStore with lifecycle and seeding operations.
type Store interface {
	EntityStore

	// SaveEntities inserts or replaces entities by code.
	SaveEntities(ctx context.Context, entities []Entity) error
	// SaveRegions inserts or replaces regions and their sub-regions by code.
	SaveRegions(ctx context.Context, regions []Region, subRegions []SubRegion) error
	// Migrate applies pending schema migrations.
	Migrate(ctx context.Context) error
	Close() error
}
