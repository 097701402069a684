// Package addrecord appends the next period to an entity's series.
package addrecord

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

// SetupRoutes configures routes for the addrecord feature.
func SetupRoutes(router chi.Router, env common.Env) error {
	handlers := NewHandlers(env)

	router.Get("/append", handlers.AppendPage)
	router.Get("/append/prepare", handlers.Prepare)
	router.Post("/append/confirm", handlers.Confirm)

	return nil
}
