// Package editrecord lists an entity's observations with inline row editing.
package editrecord

import (
	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

// SetupRoutes configures routes for the editrecord feature.
func SetupRoutes(router chi.Router, env common.Env) error {
	handlers := NewHandlers(env)

	router.Get("/edit", handlers.EditPage)
	router.Get("/edit/list", handlers.List)
	router.Route("/edit/rows/{id}", func(r chi.Router) {
		r.Get("/", handlers.ReadOnlyRow)
		r.Get("/edit", handlers.EditingRow)
		r.Put("/", handlers.SaveRow)
	})

	return nil
}
