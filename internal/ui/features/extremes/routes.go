// Package extremes compares the highest and lowest observations of a period.
package extremes

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

// SetupRoutes configures routes for the extremes feature.
func SetupRoutes(router chi.Router, env common.Env) error {
	handlers := NewHandlers(env)

	router.Get("/extremes", handlers.ExtremesPage)
	router.Get("/extremes/report", handlers.Report)

	return nil
}
