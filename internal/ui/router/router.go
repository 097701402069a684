// Package router sets up HTTP routes for the UI server.
package router

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/incomeshare/internal/metrics"
	addrecordFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/addrecord"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	deleterecordFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/deleterecord"
	editrecordFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/editrecord"
	entitiesFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/entities"
	extremesFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/extremes"
	homeFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/home"
	regionalFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/regional"
	searchFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/search"
	subregionFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/subregion"
	trendFeature "github.com/leapstack-labs/incomeshare/internal/ui/features/trend"
	"github.com/leapstack-labs/incomeshare/internal/ui/resources"
	"github.com/starfederation/datastar-go/datastar"
)

type setupFunc func(chi.Router, common.Env) error

var features = []setupFunc{
	homeFeature.SetupRoutes,
	entitiesFeature.SetupRoutes,
	trendFeature.SetupRoutes,
	searchFeature.SetupRoutes,
	subregionFeature.SetupRoutes,
	regionalFeature.SetupRoutes,
	extremesFeature.SetupRoutes,
	addrecordFeature.SetupRoutes,
	editrecordFeature.SetupRoutes,
	deleterecordFeature.SetupRoutes,
}

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(router chi.Router, env common.Env) error {
	// Hot reload endpoint for dev mode
	if env.IsDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler(env.Log()))
	router.Handle("/metrics", metrics.Handler())

	for _, setup := range features {
		if err := setup(router, env); err != nil {
			return err
		}
	}

	return nil
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
