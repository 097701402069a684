package subregion

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
	"golang.org/x/sync/errgroup"
)

// ResultRegion is the element the report replaces.
const ResultRegion = "subregion-result"

// Handlers provides HTTP handlers for the subregion feature.
type Handlers struct {
	store  core.EntityStore
	logger *slog.Logger
	isDev  bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	return &Handlers{store: env.Store, logger: env.Log(), isDev: env.IsDev}
}

// SubRegionPage renders a sub-region select and a period select.
func (h *Handlers) SubRegionPage(w http.ResponseWriter, r *http.Request) {
	var (
		subRegions []core.SubRegion
		periods    []int
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		subRegions, err = h.store.ListSubRegions(ctx)
		return err
	})
	g.Go(func() (err error) {
		periods, err = h.store.ListPeriods(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Warn("sub-region page failed", slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := components.Page("Sub-Regions", "/subregion", h.isDev, pageBody(subRegions, periods)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pageBody(subRegions []core.SubRegion, periods []int) templ.Component {
	options := make([]components.Option, 0, len(subRegions))
	for _, sr := range subRegions {
		options = append(options, components.Option{Value: sr.Code, Label: sr.Name})
	}

	return components.Component(func(ctx context.Context, w *components.Writer) {
		w.Raw(`<div`)
		w.SignalsAttr(map[string]string{"subregion": "", "period": ""})
		w.Raw(`><h4>Sub-Region Comparison</h4><p class="feature-description">Compare inequality levels among neighbors. Select a sub-region and a year to see a ranked list of all countries within that area.</p>`)
		w.Raw(`<div class="control-row">`)
		w.Component(ctx, components.Select("subregion", "Select Sub-Region", options))
		w.Component(ctx, components.PeriodSelect(periods, ""))
		w.Raw(`<button class="btn btn-primary"`)
		w.Attr("data-on:click", components.Get("/subregion/report"))
		w.Raw(`>Show</button></div>`)
		w.Component(ctx, components.Region(ResultRegion, nil))
		w.Raw(`</div>`)
	})
}

// Report patches the ranking of the chosen sub-region and period. Until
// both are chosen the region is emptied.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	signals, err := common.ReadPageSignals(r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = notifier.Error(sse, err.Error())
		return
	}

	var body templ.Component
	if signals.SubRegion != "" && signals.Period != "" {
		period, err := signals.Period.Int()
		if err != nil {
			_ = notifier.Error(sse, "Year must be a whole number.")
			return
		}

		results, err := h.store.RankSubRegion(r.Context(), signals.SubRegion, period)
		if err != nil {
			h.logger.Warn("rank sub-region failed",
				slog.String("sub_region", signals.SubRegion),
				slog.Int("period", period),
				slog.String("error", err.Error()))
			_ = common.PatchReportError(sse, ResultRegion, "Error loading report: "+err.Error())
			return
		}
		body = components.SubRegionRanking(period, results)
	}

	if err := sse.PatchElementTempl(components.Region(ResultRegion, body)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
