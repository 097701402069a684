// Package common provides shared types and utilities for UI features.
package common

import (
	"log/slog"

	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// Env carries the dependencies every feature's handlers are built from.
type Env struct {
	Store          core.EntityStore
	Sessions       sessions.Store
	Logger         *slog.Logger
	IsDev          bool
	BaselinePeriod int
}

// Log returns the configured logger, or a discard logger.
func (e Env) Log() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}
