// Package deleterecord removes single observations or a range of periods.
package deleterecord

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

// SetupRoutes configures routes for the deleterecord feature.
func SetupRoutes(router chi.Router, env common.Env) error {
	handlers := NewHandlers(env)

	router.Get("/delete", handlers.DeletePage)
	router.Get("/delete/list", handlers.List)
	router.Delete("/delete/rows/{id}", handlers.DeleteRow)
	router.Delete("/delete/range", handlers.DeleteRange)

	return nil
}
