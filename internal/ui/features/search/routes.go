// Package search finds entities by name with their latest observation.
package search

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

// SetupRoutes configures routes for the search feature.
func SetupRoutes(router chi.Router, env common.Env) error {
	handlers := NewHandlers(env)

	router.Get("/search", handlers.SearchPage)
	router.Get("/search/results", handlers.Results)

	return nil
}
