// Package subregion ranks the entities of one sub-region for a period.
package subregion

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

// SetupRoutes configures routes for the subregion feature.
func SetupRoutes(router chi.Router, env common.Env) error {
	handlers := NewHandlers(env)

	router.Get("/subregion", handlers.SubRegionPage)
	router.Get("/subregion/report", handlers.Report)

	return nil
}
