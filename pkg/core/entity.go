package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Entity is a country or region identified by a stable short code.
// Entities are created by seeding and never mutated by the record layer.
type Entity struct {
	// Code is the stable identifier (e.g. "USA")
	Code string `json:"code" yaml:"code"`
	// Name is the display name; unique by convention only
	Name string `json:"name" yaml:"name"`
	// RegionGroup is the grouping key (e.g. a sub-region code)
	RegionGroup string `json:"region_group" yaml:"region_group"`
}

// Label returns "Name (CODE)" for headings.
func (e Entity) Label() string {
	return fmt.Sprintf("%s (%s)", e.Name, e.Code)
}

// Observation is one measured value for an entity at a period (a year).
type Observation struct {
	ID         int64           `json:"id"`
	EntityCode string          `json:"entity_code"`
	Period     int             `json:"period"`
	Value      decimal.Decimal `json:"value"`
}

// ValueLabel renders the value as a percentage share, e.g. "20.5%".
func (o Observation) ValueLabel() string {
	return o.Value.String() + "%"
}

// LatestObservation pairs an entity with its most recent observation.
type LatestObservation struct {
	Entity Entity          `json:"entity"`
	Period int             `json:"period"`
	Value  decimal.Decimal `json:"value"`
}

// Region is the top level of the geographic hierarchy (e.g. "Asia").
type Region struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// SubRegion groups entities within a region. An entity's RegionGroup
// holds the code of its sub-region.
type SubRegion struct {
	Code       string `json:"code" yaml:"code"`
	Name       string `json:"name" yaml:"name"`
	RegionCode string `json:"region_code" yaml:"region_code"`
}

// SubRegionMax is the highest value recorded in a sub-region for a period.
type SubRegionMax struct {
	SubRegion SubRegion       `json:"sub_region"`
	Period    int             `json:"period"`
	Value     decimal.Decimal `json:"value"`
}

// ValueLabel renders the value as a percentage share.
func (m SubRegionMax) ValueLabel() string {
	return m.Value.String() + "%"
}
