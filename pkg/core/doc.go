// Package core defines the shared language of the incomeshare system.
//
// This package contains:
//   - Domain entities (Entity, Observation, LatestObservation)
//   - Service interfaces (EntityStore, Store)
//   - Store sentinel errors (ErrDuplicatePeriod)
//
// The Golden Rule: pkg/core imports ONLY shopspring/decimal and stdlib.
// All other packages depend on core, not the reverse.
package core
