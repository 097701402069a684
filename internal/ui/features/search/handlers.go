package search

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/internal/ui/components"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	"github.com/leapstack-labs/incomeshare/internal/ui/notifier"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// ResultsRegion is the element the results replace.
const ResultsRegion = "search-results"

// Handlers provides HTTP handlers for the search feature.
type Handlers struct {
	store  core.EntityStore
	logger *slog.Logger
	isDev  bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	return &Handlers{store: env.Store, logger: env.Log(), isDev: env.IsDev}
}

// SearchPage renders the keyword input. Results refresh as the user types.
func (h *Handlers) SearchPage(w http.ResponseWriter, r *http.Request) {
	if err := components.Page("Search", "/search", h.isDev, pageBody()).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pageBody() templ.Component {
	return components.Component(func(ctx context.Context, w *components.Writer) {
		w.Raw(`<div`)
		w.SignalsAttr(map[string]string{"keyword": ""})
		w.Raw(`><h4>Keyword Search</h4><p class="feature-description">Enter a keyword to find countries and their most recent data point.</p>`)
		w.Raw(`<div class="control-row"><input type="text" class="search-input" placeholder="Type country name..." data-bind:keyword`)
		w.Attr("data-on:input__debounce.500ms", components.Get("/search/results"))
		w.Raw(`></div>`)
		w.Component(ctx, components.Region(ResultsRegion, nil))
		w.Raw(`</div>`)
	})
}

// Results patches the latest observation of every entity whose name
// contains the keyword. An empty keyword clears the results.
func (h *Handlers) Results(w http.ResponseWriter, r *http.Request) {
	signals, err := common.ReadPageSignals(r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = notifier.Error(sse, err.Error())
		return
	}

	keyword := strings.TrimSpace(signals.Keyword)
	var body templ.Component
	if keyword != "" {
		results, err := h.store.SearchLatest(r.Context(), keyword)
		if err != nil {
			h.logger.Warn("search failed", slog.String("keyword", keyword), slog.String("error", err.Error()))
			_ = common.PatchReportError(sse, ResultsRegion, "Search failed: "+err.Error())
			return
		}
		body = components.LatestTable(results)
	}

	if err := sse.PatchElementTempl(components.Region(ResultsRegion, body)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
