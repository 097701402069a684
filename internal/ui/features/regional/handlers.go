package regional

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
const ResultRegion = "regional-result"

// Handlers provides HTTP handlers for the regional feature.
type Handlers struct {
	store  core.EntityStore
	logger *slog.Logger
	isDev  bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	return &Handlers{store: env.Store, logger: env.Log(), isDev: env.IsDev}
}

// RegionalPage renders a region select and a period select.
func (h *Handlers) RegionalPage(w http.ResponseWriter, r *http.Request) {
	var (
		regions []core.Region
		periods []int
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		regions, err = h.store.ListRegions(ctx)
		return err
	})
	g.Go(func() (err error) {
		periods, err = h.store.ListPeriods(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger.Warn("regional page failed", slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := components.Page("Regions", "/regional", h.isDev, pageBody(regions, periods)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pageBody(regions []core.Region, periods []int) templ.Component {
	options := make([]components.Option, 0, len(regions))
	for _, region := range regions {
		options = append(options, components.Option{Value: region.Code, Label: region.Name})
	}

	return components.Component(func(ctx context.Context, w *components.Writer) {
		w.Raw(`<div`)
		w.SignalsAttr(map[string]string{"region": "", "period": ""})
		w.Raw(`><h4>Regional Max Share</h4><p class="feature-description">The maximum top 1% share recorded in each sub-region of a region for a year.</p>`)
		w.Raw(`<div class="control-row">`)
		w.Component(ctx, components.Select("region", "Select Region", options))
		w.Component(ctx, components.PeriodSelect(periods, ""))
		w.Raw(`<button class="btn btn-primary"`)
		w.Attr("data-on:click", components.Get("/regional/report"))
		w.Raw(`>Analyze</button></div>`)
		w.Component(ctx, components.Region(ResultRegion, nil))
		w.Raw(`</div>`)
	})
}

// Report patches the per-sub-region maxima of the chosen region and period.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	signals, err := common.ReadPageSignals(r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = notifier.Error(sse, err.Error())
		return
	}

	var body templ.Component
	if signals.Region != "" && signals.Period != "" {
		period, err := signals.Period.Int()
		if err != nil {
			_ = notifier.Error(sse, "Year must be a whole number.")
			return
		}

		maxima, err := h.store.MaxShareBySubRegion(r.Context(), signals.Region, period)
		if err != nil {
			h.logger.Warn("regional max failed",
				slog.String("region", signals.Region),
				slog.Int("period", period),
				slog.String("error", err.Error()))
			_ = common.PatchReportError(sse, ResultRegion, "Error loading report: "+err.Error())
			return
		}
		body = components.RegionalMax(maxima)
	}

	if err := sse.PatchElementTempl(components.Region(ResultRegion, body)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
