// Package trend shows the full timeline of one entity.
package trend

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

// SetupRoutes configures routes for the trend feature.
func SetupRoutes(router chi.Router, env common.Env) error {
	handlers := NewHandlers(env)

	router.Get("/trend", handlers.TrendPage)
	router.Get("/trend/report", handlers.Report)

	return nil
}
