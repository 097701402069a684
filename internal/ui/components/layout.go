package components

import (
	"context"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/internal/ui/resources"
	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// DatastarScript is the client runtime the fragments are written for.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// NavItem is one entry of the top navigation.
type NavItem struct {
	Path  string
	Label string
}

// Nav lists the pages in display order.
var Nav = []NavItem{
	{Path: "/", Label: "Overview"},
	{Path: "/trend", Label: "Trend"},
	{Path: "/search", Label: "Search"},
	{Path: "/subregion", Label: "Sub-Regions"},
	{Path: "/regional", Label: "Regions"},
	{Path: "/extremes", Label: "Extremes"},
	{Path: "/append", Label: "Add"},
	{Path: "/edit", Label: "Edit"},
	{Path: "/delete", Label: "Delete"},
}

// Page renders a complete HTML document around body. The body element
// carries the notice signal that every response may patch.
func Page(title, currentPath string, isDev bool, body templ.Component) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		w.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.Raw(`<title>`)
		w.Text(title)
		w.Raw(` - Income Share</title>`)
		w.Raw(`<link rel="stylesheet"`)
		w.Attr("href", resources.StaticPath("app.css"))
		w.Raw(`><script type="module"`)
		w.Attr("src", DatastarScript)
		w.Raw(`></script></head><body`)
		w.SignalsAttr(map[string]any{"notice": map[string]string{"kind": "", "text": ""}})
		w.Raw(`>`)

		if isDev {
			w.Raw(`<div data-init="@get('/reload', {retryMaxCount: 1000})"></div>`)
		}

		w.Raw(`<nav class="topnav"><strong>Income Share</strong>`)
		for _, item := range Nav {
			w.Raw(`<a`)
			w.Attr("href", item.Path)
			if item.Path == currentPath {
				w.Raw(` class="active"`)
			}
			w.Raw(`>`)
			w.Text(item.Label)
			w.Raw(`</a>`)
		}
		w.Raw(`</nav>`)

		w.Raw(`<div id="notice" data-show="$notice.text != ''" data-attr:class="'notice notice-' + $notice.kind" data-on:click="$notice.text = ''"><span data-text="$notice.text"></span></div>`)

		w.Raw(`<main class="feature-box">`)
		w.Component(ctx, body)
		w.Raw(`</main></body></html>`)
	})
}

// EntitySelectID is the id of a page's entity select.
func EntitySelectID(page string) string {
	return "entity-options-" + page
}

// EntitySelect renders a select bound to the code signal whose options are
// loaded on init from the entity options endpoint for page. onChange is the
// datastar expression run when the selection changes.
func EntitySelect(page, onChange string) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<select data-bind:code`)
		w.Attr("id", EntitySelectID(page))
		w.Attr("data-init", Get("/entities/options?page="+page))
		if onChange != "" {
			w.Attr("data-on:change", onChange)
		}
		w.Raw(`>`)
		w.Component(ctx, EntityOptions(nil, ""))
		w.Raw(`</select>`)
	})
}

// EntityOptions renders the option elements of an entity select.
func EntityOptions(entities []core.Entity, selected string) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<option value="">-- Select Country --</option>`)
		for _, e := range entities {
			w.Raw(`<option`)
			w.Attr("value", e.Code)
			if e.Code == selected {
				w.Raw(` selected`)
			}
			w.Raw(`>`)
			w.Text(e.Label())
			w.Raw(`</option>`)
		}
	})
}
