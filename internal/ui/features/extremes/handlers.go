package extremes

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/internal/ui/components"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	"github.com/leapstack-labs/incomeshare/internal/ui/notifier"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	// ResultRegion is the element the report replaces.
	ResultRegion = "extremes-result"
	// Depth is how many observations each side of the report shows.
	Depth = 5
)

// Handlers provides HTTP handlers for the extremes feature.
type Handlers struct {
	store  core.EntityStore
	logger *slog.Logger
	isDev  bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	return &Handlers{store: env.Store, logger: env.Log(), isDev: env.IsDev}
}

// ExtremesPage renders a select of every recorded period.
func (h *Handlers) ExtremesPage(w http.ResponseWriter, r *http.Request) {
	periods, err := h.store.ListPeriods(r.Context())
	if err != nil {
		h.logger.Warn("list periods failed", slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := components.Page("Extremes", "/extremes", h.isDev, pageBody(periods)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pageBody(periods []int) templ.Component {
	return components.Component(func(ctx context.Context, w *components.Writer) {
		w.Raw(`<div`)
		w.SignalsAttr(map[string]string{"period": ""})
		w.Raw(`><h4>Inequality Extremes</h4><p class="feature-description">The countries with the highest and the lowest top 1% share in a year.</p>`)
		w.Raw(`<div class="control-row">`)
		w.Component(ctx, components.PeriodSelect(periods, components.Get("/extremes/report")))
		w.Raw(`</div>`)
		w.Component(ctx, components.Region(ResultRegion, nil))
		w.Raw(`</div>`)
	})
}

// Report patches both ends of the chosen period's ranking.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	signals, err := common.ReadPageSignals(r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = notifier.Error(sse, err.Error())
		return
	}

	var body templ.Component
	if signals.Period != "" {
		period, err := signals.Period.Int()
		if err != nil {
			_ = notifier.Error(sse, "Year must be a whole number.")
			return
		}

		top, err := h.store.RankPeriod(r.Context(), period, Depth, false)
		if err == nil {
			var bottom []core.LatestObservation
			bottom, err = h.store.RankPeriod(r.Context(), period, Depth, true)
			body = components.Extremes(top, bottom)
		}
		if err != nil {
			h.logger.Warn("rank period failed", slog.Int("period", period), slog.String("error", err.Error()))
			_ = common.PatchReportError(sse, ResultRegion, "Error loading report: "+err.Error())
			return
		}
	}

	if err := sse.PatchElementTempl(components.Region(ResultRegion, body)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
