package deleterecord

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/incomeshare/internal/records"
	"github.com/leapstack-labs/incomeshare/internal/ui/components"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	"github.com/leapstack-labs/incomeshare/internal/ui/notifier"
	"github.com/starfederation/datastar-go/datastar"
)

const (
	page     = "delete"
	listHint = "Select a country to view records."
)

// Handlers provides HTTP handlers for the deleterecord feature.
type Handlers struct {
	lists        *records.ListSync
	sessionStore sessions.Store
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	return &Handlers{
		lists:        records.NewListSync(env.Store, env.Logger),
		sessionStore: env.Sessions,
		logger:       env.Log(),
		isDev:        env.IsDev,
	}
}

// DeletePage renders the chooser, the range form and the delete list.
func (h *Handlers) DeletePage(w http.ResponseWriter, r *http.Request) {
	code := common.RecalledEntity(r, h.sessionStore, page)
	list := components.Placeholder(string(records.ListRegion(records.ListDelete)), listHint)
	if code != "" {
		list = components.Fragment(h.lists.List(r.Context(), records.ListDelete, code))
	}

	if err := components.Page("Delete", "/delete", h.isDev, pageBody(code, list)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pageBody(code string, list templ.Component) templ.Component {
	return components.Component(func(ctx context.Context, w *components.Writer) {
		w.Raw(`<div`)
		w.SignalsAttr(map[string]string{"code": code, "start": "", "end": ""})
		w.Raw(`><h4>Delete Records</h4><p class="feature-description">Remove a single year from the list, or every year in a range.</p>`)
		w.Raw(`<div class="control-row"><label>Select Country:</label>`)
		w.Component(ctx, components.EntitySelect(page, components.Get("/delete/list")))
		w.Raw(`</div><div class="control-row"><label>Range:</label>`)
		w.Raw(`<input type="number" placeholder="Start year" data-bind:start>`)
		w.Raw(`<input type="number" placeholder="End year" data-bind:end>`)
		w.Raw(`<button class="btn btn-del"`)
		w.Attr("data-on:click", components.Confirmed("Delete every record in this range?", components.Delete("/delete/range")))
		w.Raw(`>Delete Range</button></div>`)
		w.Component(ctx, components.Placeholder(string(records.RegionDeleteStatus), ""))
		w.Component(ctx, list)
		w.Raw(`</div>`)
	})
}

// List patches the delete list of the chosen entity and remembers the choice.
// A failure to remember is logged; the list still renders.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	signals, err := common.ReadPageSignals(r)
	if err != nil {
		sse := datastar.NewSSE(w, r)
		_ = notifier.Error(sse, err.Error())
		return
	}

	// The session cookie must be written before the SSE headers.
	if err := common.RememberEntity(w, r, h.sessionStore, page, signals.Code); err != nil {
		h.logger.Warn("remember entity failed", slog.String("page", page), slog.String("error", err.Error()))
	}

	sse := datastar.NewSSE(w, r)
	if signals.Code == "" {
		_ = sse.PatchElementTempl(components.Placeholder(string(records.ListRegion(records.ListDelete)), listHint))
		return
	}

	list := h.lists.List(r.Context(), records.ListDelete, signals.Code)
	if err := common.WriteResponse(sse, records.Response{Primary: list}); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if list.Kind == records.KindList {
		_ = notifier.Clear(sse)
	}
}

// DeleteRow removes one observation and its row.
func (h *Handlers) DeleteRow(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := common.WriteResponse(sse, h.lists.DeleteRow(r.Context(), id)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// DeleteRange removes the chosen entity's observations between the start
// and end signals, inclusive, and refreshes the delete list out of band.
func (h *Handlers) DeleteRange(w http.ResponseWriter, r *http.Request) {
	signals, err := common.ReadPageSignals(r)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = notifier.Error(sse, err.Error())
		return
	}

	if err := common.WriteResponse(sse, h.rangeResponse(r.Context(), signals)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (h *Handlers) rangeResponse(ctx context.Context, signals common.PageSignals) records.Response {
	if signals.Code == "" {
		return h.lists.DeleteRange(ctx, "", 0, 0)
	}
	start, err := signals.Start.Int()
	if err != nil {
		return records.ErrorResponse(records.RegionDeleteStatus, records.ListDelete, "Start year: "+err.Error()+".")
	}
	end, err := signals.End.Int()
	if err != nil {
		return records.ErrorResponse(records.RegionDeleteStatus, records.ListDelete, "End year: "+err.Error()+".")
	}
	return h.lists.DeleteRange(ctx, signals.Code, start, end)
}
