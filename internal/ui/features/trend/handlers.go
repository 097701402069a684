package trend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/internal/records"
	"github.com/leapstack-labs/incomeshare/internal/ui/components"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	"github.com/leapstack-labs/incomeshare/internal/ui/notifier"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// ResultRegion is the element the report replaces.
const ResultRegion = "trend-result"

// Handlers provides HTTP handlers for the trend feature.
type Handlers struct {
	store    core.EntityStore
	resolver *records.Resolver
	logger   *slog.Logger
	isDev    bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	return &Handlers{
		store:    env.Store,
		resolver: records.NewResolver(env.Store, env.Logger),
		logger:   env.Log(),
		isDev:    env.IsDev,
	}
}

// TrendPage renders the entity chooser: a dropdown or a free-text search.
// Using one clears the other.
func (h *Handlers) TrendPage(w http.ResponseWriter, r *http.Request) {
	if err := components.Page("Trend", "/trend", h.isDev, pageBody()).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pageBody() templ.Component {
	return components.Component(func(ctx context.Context, w *components.Writer) {
		w.Raw(`<div`)
		w.SignalsAttr(map[string]string{"code": "", "search": ""})
		w.Raw(`><h4>Country Income Trend</h4><p class="feature-description">View the complete historical timeline of income inequality for a country.</p>`)
		w.Raw(`<div class="control-row"><label>By list:</label>`)
		w.Component(ctx, components.EntitySelect("trend", "$search = ''; "+components.Get("/trend/report")))
		w.Raw(`</div><div class="divider-text">OR</div><div class="control-row"><label>By search:</label>`)
		w.Raw(`<input type="text" placeholder="Type country name (e.g. United)..." data-bind:search data-on:input="$code = ''">`)
		w.Raw(`<button class="btn btn-primary"`)
		w.Attr("data-on:click", components.Get("/trend/report"))
		w.Raw(`>Search</button></div>`)
		w.Component(ctx, components.Region(ResultRegion, nil))
		w.Raw(`</div>`)
	})
}

// Report resolves the chosen entity and patches its timeline. A search
// overrides the dropdown; resolution failures arrive as error notices and
// store failures also replace the timeline with the error.
func (h *Handlers) Report(w http.ResponseWriter, r *http.Request) {
	signals, err := common.ReadPageSignals(r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = notifier.Error(sse, err.Error())
		return
	}

	region, notice := h.report(r.Context(), signals)
	if err := sse.PatchElementTempl(region); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	_ = notifier.Notify(sse, notice)
}

func (h *Handlers) report(ctx context.Context, signals common.PageSignals) (templ.Component, *records.Notice) {
	empty := components.Region(ResultRegion, nil)

	code := signals.Code
	if signals.Search != "" {
		entity, err := h.resolver.Resolve(ctx, signals.Search)
		if err != nil {
			return empty, &records.Notice{Kind: records.NoticeError, Text: records.ResolutionMessage(err)}
		}
		code = entity.Code
	}
	if code == "" {
		return empty, nil
	}

	entity, err := h.store.GetEntity(ctx, code)
	if err != nil {
		return h.loadFailure(code, err)
	}
	if entity == nil {
		return empty, &records.Notice{Kind: records.NoticeError, Text: fmt.Sprintf("Unknown entity %q.", code)}
	}

	observations, err := h.store.GetObservations(ctx, code)
	if err != nil {
		return h.loadFailure(code, err)
	}
	return components.Region(ResultRegion, components.TrendReport(*entity, observations)), nil
}

func (h *Handlers) loadFailure(code string, err error) (templ.Component, *records.Notice) {
	h.logger.Warn("trend report failed", slog.String("entity", code), slog.String("error", err.Error()))
	message := "Error loading report: " + err.Error()
	return common.ReportError(ResultRegion, message), &records.Notice{Kind: records.NoticeError, Text: message}
}
