package components

import (
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// DataTable renders a plain table. Rows are pre-formatted cells.
func DataTable(headers []string, rows [][]string) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		if len(rows) == 0 {
			w.Raw(`<p class="muted">No data found.</p>`)
			return
		}
		w.Raw(`<table class="data-table"><thead><tr>`)
		for _, h := range headers {
			w.Raw(`<th>`)
			w.Text(h)
			w.Raw(`</th>`)
		}
		w.Raw(`</tr></thead><tbody>`)
		for _, row := range rows {
			w.Raw(`<tr>`)
			for _, cell := range row {
				w.Raw(`<td>`)
				w.Text(cell)
				w.Raw(`</td>`)
			}
			w.Raw(`</tr>`)
		}
		w.Raw(`</tbody></table>`)
	})
}

// Region wraps body in an element with the given id, the unit every
// report patch replaces.
func Region(id string, body templ.Component) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<div`)
		w.Attr("id", id)
		w.Raw(`>`)
		if body != nil {
			w.Component(ctx, body)
		}
		w.Raw(`</div>`)
	})
}

// TrendReport renders an entity's timeline.
func TrendReport(entity core.Entity, observations []core.Observation) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<h5 class="report-title">Trend for: `)
		w.Text(entity.Name)
		w.Raw(`</h5>`)

		rows := make([][]string, 0, len(observations))
		for _, o := range observations {
			rows = append(rows, []string{strconv.Itoa(o.Period), o.ValueLabel()})
		}
		w.Component(ctx, DataTable([]string{"Year", "Top 1% Share"}, rows))
	})
}

// LatestTable renders keyword search results.
func LatestTable(results []core.LatestObservation) templ.Component {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Entity.Name, strconv.Itoa(r.Period), r.Value.String() + "%"})
	}
	return DataTable([]string{"Country", "Latest Year", "Share"}, rows)
}

// Extremes renders the highest and lowest observations of a period side by side.
func Extremes(top, bottom []core.LatestObservation) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<div class="split">`)
		extremesColumn(ctx, w, "Highest Inequality", "high", top)
		extremesColumn(ctx, w, "Lowest Inequality", "low", bottom)
		w.Raw(`</div>`)
	})
}

func extremesColumn(ctx context.Context, w *Writer, title, class string, results []core.LatestObservation) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Entity.Name, r.Value.String() + "%"})
	}
	w.Raw(`<div><h5`)
	w.Attr("class", "extreme-"+class)
	w.Raw(`>`)
	w.Text(title)
	w.Raw(`</h5>`)
	w.Component(ctx, DataTable([]string{"Country", "Share"}, rows))
	w.Raw(`</div>`)
}

// SubRegionRanking renders every entity of a sub-region for one period.
func SubRegionRanking(period int, results []core.LatestObservation) templ.Component {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Entity.Name, r.Value.String() + "%"})
	}
	return DataTable([]string{"Country", fmt.Sprintf("Share (%d)", period)}, rows)
}

// RegionalMax renders the highest value of each sub-region of a region.
func RegionalMax(results []core.SubRegionMax) templ.Component {
	rows := make([][]string, 0, len(results))
	for _, m := range results {
		rows = append(rows, []string{m.SubRegion.Name, m.ValueLabel()})
	}
	return DataTable([]string{"Sub Region", "Max Share"}, rows)
}

// Option is one choice of a Select.
type Option struct {
	Value string
	Label string
}

// Select renders a select bound to the named signal, led by a prompt option.
func Select(signal, prompt string, options []Option) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<select data-bind:`, signal, `><option value="">`)
		w.Text(prompt)
		w.Raw(`</option>`)
		for _, o := range options {
			w.Raw(`<option`)
			w.Attr("value", o.Value)
			w.Raw(`>`)
			w.Text(o.Label)
			w.Raw(`</option>`)
		}
		w.Raw(`</select>`)
	})
}

// PeriodSelect renders a select of periods bound to the period signal.
func PeriodSelect(periods []int, onChange string) templ.Component {
	return Component(func(ctx context.Context, w *Writer) {
		w.Raw(`<select data-bind:period`)
		if onChange != "" {
			w.Attr("data-on:change", onChange)
		}
		w.Raw(`><option value="">Select Year</option>`)
		for _, p := range periods {
			w.Raw(`<option`)
			w.Attr("value", strconv.Itoa(p))
			w.Raw(`>`)
			w.Textf("%d", p)
			w.Raw(`</option>`)
		}
		w.Raw(`</select>`)
	})
}
