package home

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/internal/ui/components"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	store  core.EntityStore
	logger *slog.Logger
	isDev  bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	return &Handlers{store: env.Store, logger: env.Log(), isDev: env.IsDev}
}

// Overview is the dataset summary shown on the home page.
type Overview struct {
	EntityCount  int
	PeriodCount  int
	LatestPeriod int
}

var descriptions = map[string]string{
	"/trend":     "Full timeline of the top 1% income share for one country.",
	"/search":    "Find countries by name with their latest recorded share.",
	"/subregion": "Rank the countries of a sub-region for one year.",
	"/regional":  "Peak share of each sub-region within a region.",
	"/extremes":  "Highest and lowest shares recorded in a year.",
	"/append":    "Record the next year for a country.",
	"/edit":      "Correct recorded values inline.",
	"/delete":    "Remove single records or a range of years.",
}

// HomePage renders the overview with a card per feature.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	overview, err := h.buildOverview(r.Context())
	if err != nil {
		h.logger.Warn("overview failed", slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := components.Page("Overview", "/", h.isDev, overviewBody(overview)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) buildOverview(ctx context.Context) (Overview, error) {
	entities, err := h.store.ListEntities(ctx)
	if err != nil {
		return Overview{}, err
	}
	periods, err := h.store.ListPeriods(ctx)
	if err != nil {
		return Overview{}, err
	}

	o := Overview{EntityCount: len(entities), PeriodCount: len(periods)}
	if len(periods) > 0 {
		o.LatestPeriod = periods[0]
	}
	return o, nil
}

func overviewBody(o Overview) templ.Component {
	return components.Component(func(ctx context.Context, w *components.Writer) {
		w.Raw(`<h4>Income Inequality Records</h4><p class="feature-description">`)
		w.Textf("%d countries, records across %d years.", o.EntityCount, o.PeriodCount)
		if o.LatestPeriod > 0 {
			w.Text(" Latest year: " + strconv.Itoa(o.LatestPeriod) + ".")
		}
		w.Raw(`</p><ul class="overview">`)
		for _, item := range components.Nav {
			desc, ok := descriptions[item.Path]
			if !ok {
				continue
			}
			w.Raw(`<li><a`)
			w.Attr("href", item.Path)
			w.Raw(`>`)
			w.Text(item.Label)
			w.Raw(`</a> `)
			w.Text(desc)
			w.Raw(`</li>`)
		}
		w.Raw(`</ul>`)
	})
}
