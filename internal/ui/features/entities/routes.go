// Package entities serves the entity dropdown options shared by every page.
package entities

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

// SetupRoutes configures routes for the entities feature.
func SetupRoutes(router chi.Router, env common.Env) error {
	handlers := NewHandlers(env)

	router.Get("/entities/options", handlers.Options)

	return nil
}
