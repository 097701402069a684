// Package regional reports the peak observation of each sub-region
// within a region.
package regional

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

// SetupRoutes configures routes for the regional feature.
func SetupRoutes(router chi.Router, env common.Env) error {
	handlers := NewHandlers(env)

	router.Get("/regional", handlers.RegionalPage)
	router.Get("/regional/report", handlers.Report)

	return nil
}
