package addrecord

import (
	"context"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/internal/records"
	"github.com/leapstack-labs/incomeshare/internal/ui/components"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	"github.com/leapstack-labs/incomeshare/internal/ui/notifier"
	"github.com/starfederation/datastar-go/datastar"
)

// Handlers provides HTTP handlers for the addrecord feature.
type Handlers struct {
	appender *records.Appender
	isDev    bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	resolver := records.NewResolver(env.Store, env.Logger)
	advancer := records.NewAdvancer(env.Store, env.BaselinePeriod)
	return &Handlers{
		appender: records.NewAppender(env.Store, resolver, advancer, env.Logger),
		isDev:    env.IsDev,
	}
}

// AppendPage renders the entity chooser and the empty append area.
func (h *Handlers) AppendPage(w http.ResponseWriter, r *http.Request) {
	if err := components.Page("Add", "/append", h.isDev, pageBody()).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pageBody() templ.Component {
	return components.Component(func(ctx context.Context, w *components.Writer) {
		w.Raw(`<div`)
		w.SignalsAttr(map[string]string{"code": "", "search": ""})
		w.Raw(`><h4>Add Next Year Record</h4><p class="feature-description">Select a country and the next chronological year is chosen for data entry.</p>`)
		w.Raw(`<div class="control-row"><label>Select by list:</label>`)
		w.Component(ctx, components.EntitySelect("append", "$search = ''; "+components.Get("/append/prepare")))
		w.Raw(`</div><div class="divider-text">OR</div><div class="control-row"><label>Select by search:</label>`)
		w.Raw(`<input type="text" placeholder="Type country name..." data-bind:search data-on:input="$code = ''">`)
		w.Raw(`<button class="btn btn-primary"`)
		w.Attr("data-on:click", components.Get("/append/prepare"))
		w.Raw(`>Prepare Add</button></div>`)
		w.Component(ctx, components.Placeholder(string(records.RegionAppendArea), ""))
		w.Raw(`</div>`)
	})
}

// Prepare resolves the search text, or the dropdown code when no text was
// typed, and patches the append form for the entity's next period.
func (h *Handlers) Prepare(w http.ResponseWriter, r *http.Request) {
	signals, err := common.ReadPageSignals(r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = notifier.Error(sse, err.Error())
		return
	}

	input := signals.Search
	if input == "" {
		input = signals.Code
	}
	if input == "" {
		_ = sse.PatchElementTempl(components.Placeholder(string(records.RegionAppendArea), ""))
		return
	}

	if err := common.WriteResponse(sse, h.appender.Prepare(r.Context(), input)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// Confirm writes the value for the entity and period carried in the query.
func (h *Handlers) Confirm(w http.ResponseWriter, r *http.Request) {
	signals, err := common.ReadPageSignals(r)
	code := r.URL.Query().Get("code")
	period, periodErr := strconv.Atoi(r.URL.Query().Get("period"))

	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = notifier.Error(sse, err.Error())
		return
	}

	resp := records.ErrorResponse(records.RegionAppendArea, "", "Missing or invalid period.")
	if periodErr == nil {
		resp = h.appender.Confirm(r.Context(), code, period, signals.Value.String())
	}
	if err := common.WriteResponse(sse, resp); err != nil {
		_ = sse.ConsoleError(err)
	}
}
