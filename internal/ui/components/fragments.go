package components

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/internal/records"
	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// Fragment renders a record fragment according to its kind.
func Fragment(f records.Fragment) templ.Component {
	switch f.Kind {
	case records.KindReadOnlyRow:
		return ReadOnlyRow(f)
	case records.KindEditingRow:
		return EditingRow(f)
	case records.KindList:
		return List(f)
	case records.KindStatus:
		return Status(f)
	case records.KindAppendForm:
		return AppendForm(f)
	case records.KindError:
		return Error(f)
	default:
		return Placeholder(string(f.Region), "")
	}
}

// ValueSignal is the signal key holding an editing row's input.
func ValueSignal(id int64) string {
	return fmt.Sprintf("v%d", id)
}

// ReadOnlyRow renders an observation row with its list's affordance:
// Edit on the edit list, Delete on the delete list.
func ReadOnlyRow(f records.Fragment) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		o := f.Observation
		w.Raw(`<div class="row"`)
		w.Attr("id", string(f.Region))
		w.Raw(`><span class="period">`)
		w.Textf("%d", o.Period)
		w.Raw(`</span><span class="value">`)
		w.Text(o.ValueLabel())
		w.Raw(`</span><span class="actions">`)

		if f.List == records.ListDelete {
			w.Raw(`<button class="btn btn-del"`)
			w.Attr("data-on:click", Confirmed(
				fmt.Sprintf("Delete data for year %d?", o.Period),
				Delete(fmt.Sprintf("/delete/rows/%d", o.ID)),
			))
			w.Raw(`>Delete</button>`)
		} else {
			w.Raw(`<button class="btn btn-primary"`)
			w.Attr("data-on:click", Get(fmt.Sprintf("/edit/rows/%d/edit", o.ID)))
			w.Raw(`>Edit</button>`)
		}

		w.Raw(`</span></div>`)
	})
}

// EditingRow renders the period as context and the value as a bound input.
// Rendering resets the row's value signal, so stale client input never
// survives a re-render.
func EditingRow(f records.Fragment) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		o := f.Observation
		key := ValueSignal(o.ID)

		w.Raw(`<div class="row editing"`)
		w.Attr("id", string(f.Region))
		w.SignalsAttr(map[string]any{"values": map[string]string{key: f.Input}})
		w.Raw(`><span class="period">`)
		if o.Period != 0 {
			w.Textf("%d", o.Period)
		}
		w.Raw(`</span><span class="value"><input type="text" inputmode="decimal" autofocus`)
		w.Attr("data-bind:values."+key, "")
		w.Raw(`><span>%</span></span><span class="actions">`)

		w.Raw(`<button class="btn btn-success"`)
		w.Attr("data-on:click", Put(fmt.Sprintf("/edit/rows/%d?period=%d", o.ID, o.Period)))
		w.Raw(`>Save</button><button class="btn btn-del"`)
		w.Attr("data-on:click", Get(fmt.Sprintf("/edit/rows/%d", o.ID)))
		w.Raw(`>Cancel</button></span>`)

		if f.Annotation != "" {
			w.Raw(`<span class="annotation">`)
			w.Text(f.Annotation)
			w.Raw(`</span>`)
		}
		w.Raw(`</div>`)
	})
}

// List renders a whole list region: a header and one read-only row per
// observation, or a hint when there are none.
func List(f records.Fragment) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<div class="record-list"`)
		w.Attr("id", string(f.Region))
		w.Raw(`>`)

		if f.Entity != nil {
			w.Raw(`<h5>`)
			w.Text(f.Entity.Label())
			w.Raw(`</h5>`)
		}

		if len(f.Observations) == 0 {
			w.Raw(`<p class="muted-error">No records found for this country.</p></div>`)
			return
		}

		w.Raw(`<div class="row header"><span>Year</span><span>Top 1% Share</span><span class="actions">Action</span></div>`)
		for _, o := range f.Observations {
			w.Component(ctx, ReadOnlyRow(rowFragment(f.List, o)))
		}
		w.Raw(`</div>`)
	})
}

func rowFragment(kind records.ListKind, o core.Observation) records.Fragment {
	if kind == records.ListEdit {
		return records.RenderReadOnly(o)
	}
	return records.Fragment{
		Region:      records.RowRegion(kind, o.ID),
		Kind:        records.KindReadOnlyRow,
		List:        kind,
		Observation: &o,
	}
}

// Status renders a success message in its region.
func Status(f records.Fragment) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<div class="status success"`)
		w.Attr("id", string(f.Region))
		w.Raw(`>`)
		w.Text(f.Message)
		w.Raw(`</div>`)
	})
}

// Error renders an error message in the region that triggered it. Row
// regions keep the row layout so the list stays aligned.
func Error(f records.Fragment) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		class := "status error"
		if strings.Contains(string(f.Region), "-row-") {
			class = "row error"
		}
		w.Raw(`<div`)
		w.Attr("class", class)
		w.Attr("id", string(f.Region))
		w.Raw(`>`)
		w.Text(f.Message)
		w.Raw(`</div>`)
	})
}

// AppendForm renders the confirmation form for the next period of an entity.
func AppendForm(f records.Fragment) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<div class="append-form"`)
		w.Attr("id", string(f.Region))
		w.SignalsAttr(map[string]string{"value": ""})
		w.Raw(`><h5>Adding for: `)
		w.Text(f.Entity.Label())
		w.Raw(`</h5><div class="control-row"><span>Next Year: <strong>`)
		w.Textf("%d", f.Period)
		w.Raw(`</strong></span><input type="text" inputmode="decimal" placeholder="Top 1% Share" data-bind:value>`)
		w.Raw(`<button class="btn btn-success"`)
		w.Attr("data-on:click", Post(fmt.Sprintf("/append/confirm?code=%s&period=%d", url.QueryEscape(f.Entity.Code), f.Period)))
		w.Raw(`>Confirm Save</button></div></div>`)
	})
}

// Placeholder renders an empty region with an optional hint.
func Placeholder(region, hint string) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<div`)
		w.Attr("id", region)
		w.Raw(`>`)
		if hint != "" {
			w.Raw(`<p class="muted">`)
			w.Text(hint)
			w.Raw(`</p>`)
		}
		w.Raw(`</div>`)
	})
}
