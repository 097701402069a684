package entities

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/incomeshare/internal/ui/components"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	"github.com/leapstack-labs/incomeshare/internal/ui/notifier"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

var pageName = regexp.MustCompile(`^[a-z]+$`)

// Handlers provides HTTP handlers for the entities feature.
type Handlers struct {
	store        core.EntityStore
	sessionStore sessions.Store
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env common.Env) *Handlers {
	return &Handlers{store: env.Store, sessionStore: env.Sessions, logger: env.Log()}
}

// Options patches the options of the page's entity select, preselecting
// the entity the viewer last chose on that page.
func (h *Handlers) Options(w http.ResponseWriter, r *http.Request) {
	page := r.URL.Query().Get("page")
	if !pageName.MatchString(page) {
		http.Error(w, "invalid page", http.StatusBadRequest)
		return
	}
	selected := common.RecalledEntity(r, h.sessionStore, page)

	entities, err := h.store.ListEntities(r.Context())
	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.logger.Warn("list entities failed", slog.String("error", err.Error()))
		_ = notifier.Error(sse, "Could not load countries: "+err.Error())
		return
	}

	if err := sse.PatchElementTempl(
		components.EntityOptions(entities, selected),
		datastar.WithSelector("#"+components.EntitySelectID(page)),
		datastar.WithMode(datastar.ElementPatchModeInner),
	); err != nil {
		_ = sse.ConsoleError(err)
	}
}
