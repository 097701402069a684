package editrecord

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
	page     = "edit"
	listHint = "Select a country to view records."
)

// Handlers provides HTTP handlers for the editrecord feature.
type Handlers struct {
	rows         *records.Rows
	lists        *records.ListSync
	sessionStore sessions.Store
	logger       *slog.Logger
	isDev        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	return &Handlers{
		rows:         records.NewRows(env.Store, env.Logger),
		lists:        records.NewListSync(env.Store, env.Logger),
		sessionStore: env.Sessions,
		logger:       env.Log(),
		isDev:        env.IsDev,
	}
}

// EditPage renders the chooser and, when the viewer chose an entity
// before, that entity's list.
func (h *Handlers) EditPage(w http.ResponseWriter, r *http.Request) {
	code := common.RecalledEntity(r, h.sessionStore, page)
	list := components.Placeholder(string(records.ListRegion(records.ListEdit)), listHint)
	if code != "" {
		list = components.Fragment(h.lists.List(r.Context(), records.ListEdit, code))
	}

	if err := components.Page("Edit", "/edit", h.isDev, pageBody(code, list)).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pageBody(code string, list templ.Component) templ.Component {
	return components.Component(func(ctx context.Context, w *components.Writer) {
		w.Raw(`<div`)
		w.SignalsAttr(map[string]any{"code": code, "values": map[string]string{}})
		w.Raw(`><h4>Update Record (Inline Edit)</h4><p class="feature-description">Select a country to view its record history, then click Edit on any row to modify the value in place.</p>`)
		w.Raw(`<div class="control-row"><label>Select Country to Edit:</label>`)
		w.Component(ctx, components.EntitySelect(page, components.Get("/edit/list")))
		w.Raw(`</div>`)
		w.Component(ctx, list)
		w.Raw(`</div>`)
	})
}

// List patches the edit list of the chosen entity and remembers the choice.
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
		_ = sse.PatchElementTempl(components.Placeholder(string(records.ListRegion(records.ListEdit)), listHint))
		return
	}

	list := h.lists.List(r.Context(), records.ListEdit, signals.Code)
	if err := common.WriteResponse(sse, records.Response{Primary: list}); err != nil {
		_ = sse.ConsoleError(err)
		return
	}
	if list.Kind == records.KindList {
		_ = notifier.Clear(sse)
	}
}

// EditingRow turns a row into its editing form.
func (h *Handlers) EditingRow(w http.ResponseWriter, r *http.Request) {
	id, ok := rowID(w, r)
	if !ok {
		return
	}
	h.respond(w, r, h.rows.Editing(r.Context(), id))
}

// ReadOnlyRow renders a row read-only again without saving (Cancel).
func (h *Handlers) ReadOnlyRow(w http.ResponseWriter, r *http.Request) {
	id, ok := rowID(w, r)
	if !ok {
		return
	}
	h.respond(w, r, h.rows.ReadOnly(r.Context(), id))
}

// SaveRow commits the row's value signal. The period query parameter is
// the row's display context, echoed for re-rendering a failed save.
func (h *Handlers) SaveRow(w http.ResponseWriter, r *http.Request) {
	id, ok := rowID(w, r)
	if !ok {
		return
	}
	period, err := strconv.Atoi(r.URL.Query().Get("period"))
	if err != nil {
		h.logger.Warn("invalid period", slog.Int64("id", id), slog.String("period", r.URL.Query().Get("period")))
		http.Error(w, "invalid period", http.StatusBadRequest)
		return
	}

	signals, err := common.ReadPageSignals(r)
	if err != nil {
		sse := datastar.NewSSE(w, r)
		_ = notifier.Error(sse, err.Error())
		return
	}

	edit := records.Edit{
		ID:     id,
		Period: period,
		Input:  signals.Values[components.ValueSignal(id)].String(),
	}
	h.respond(w, r, h.rows.CommitResponse(r.Context(), edit))
}

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, resp records.Response) {
	sse := datastar.NewSSE(w, r)
	if err := common.WriteResponse(sse, resp); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func rowID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid record id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
