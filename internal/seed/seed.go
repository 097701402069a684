// Package seed loads entity and observation fixtures from YAML into a store.
//
// A seed file lists the geography, entities and the observations recorded
// against them:
//
//	regions:
//	  - {code: "019", name: Americas}
//	sub_regions:
//	  - {code: "021", name: Northern America, region_code: "019"}
//	entities:
//	  - code: USA
//	    name: United States of America
//	    region_group: "021"
//	observations:
//	  - {code: USA, period: 2020, value: 20.5}
//
// Applying a file is idempotent. Regions and entities are upserted by code and
// observations whose period is already recorded are skipped.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sample string

// Share is a seeded observation value, parsed from the literal scalar text
// rather than through a float.
type Share struct {
	decimal.Decimal
}

// UnmarshalYAML parses a scalar node as a decimal.
func (s *Share) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value must be a number", node.Line)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: %q is not a number", node.Line, node.Value)
	}
	s.Decimal = d
	return nil
}

// Observation is one seeded observation.
type Observation struct {
	Code   string `yaml:"code"`
	Period int    `yaml:"period"`
	Value  Share  `yaml:"value"`
}

// File is the decoded content of a seed file.
type File struct {
	Regions      []core.Region    `yaml:"regions"`
	SubRegions   []core.SubRegion `yaml:"sub_regions"`
	Entities     []core.Entity    `yaml:"entities"`
	Observations []Observation    `yaml:"observations"`
}

// Result summarizes an Apply.
type Result struct {
	Regions  int `json:"regions"`
	Entities int `json:"entities"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Load decodes and validates a seed file.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Sample returns the bundled sample dataset.
func Sample() *File {
	f, err := Load(strings.NewReader(sample))
	if err != nil {
		panic("seed: bundled sample is invalid: " + err.Error())
	}
	return f
}

func (f *File) validate() error {
	regions := make(map[string]bool, len(f.Regions))
	for i, r := range f.Regions {
		if strings.TrimSpace(r.Code) == "" {
			return fmt.Errorf("region %d: code is required", i+1)
		}
		regions[r.Code] = true
	}
	for i, sr := range f.SubRegions {
		if strings.TrimSpace(sr.Code) == "" {
			return fmt.Errorf("sub-region %d: code is required", i+1)
		}
		if !regions[sr.RegionCode] {
			return fmt.Errorf("sub-region %s: unknown region %q", sr.Code, sr.RegionCode)
		}
	}
	codes := make(map[string]bool, len(f.Entities))
	for i, e := range f.Entities {
		if strings.TrimSpace(e.Code) == "" {
			return fmt.Errorf("entity %d: code is required", i+1)
		}
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("entity %s: name is required", e.Code)
		}
		if codes[e.Code] {
			return fmt.Errorf("entity %s: duplicate code", e.Code)
		}
		codes[e.Code] = true
	}
	for i, o := range f.Observations {
		if o.Code == "" {
			return fmt.Errorf("observation %d: code is required", i+1)
		}
		if o.Period <= 0 {
			return fmt.Errorf("observation %d: period must be a positive year", i+1)
		}
	}
	return nil
}

// Apply writes the file's entities and observations to the store.
func Apply(ctx context.Context, store core.Store, f *File, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var res Result
	if len(f.Regions) > 0 || len(f.SubRegions) > 0 {
		if err := store.SaveRegions(ctx, f.Regions, f.SubRegions); err != nil {
			return res, fmt.Errorf("failed to save regions: %w", err)
		}
		res.Regions = len(f.Regions)
	}
	if len(f.Entities) > 0 {
		if err := store.SaveEntities(ctx, f.Entities); err != nil {
			return res, fmt.Errorf("failed to save entities: %w", err)
		}
		res.Entities = len(f.Entities)
	}

	for _, o := range f.Observations {
		_, err := store.InsertObservation(ctx, o.Code, o.Period, o.Value.Decimal)
		switch {
		case errors.Is(err, core.ErrDuplicatePeriod):
			logger.Debug("observation already recorded", slog.String("code", o.Code), slog.Int("period", o.Period))
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("failed to insert %s %d: %w", o.Code, o.Period, err)
		default:
			res.Inserted++
		}
	}

	logger.Info("seed applied",
		slog.Int("regions", res.Regions),
		slog.Int("entities", res.Entities),
		slog.Int("inserted", res.Inserted),
		slog.Int("skipped", res.Skipped))
	return res, nil
}
