package components

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/internal/records"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

var (
	france  = core.Entity{Code: "FRA", Name: "France", RegionGroup: "155"}
	gbr2020 = core.Observation{ID: 3, EntityCode: "GBR", Period: 2020, Value: decimal.RequireFromString("13.2")}
)

func TestFragment(t *testing.T) {
	tests := []struct {
		name     string
		fragment records.Fragment
		want     []string
		wantNot  []string
	}{
		{
			name:     "edit list row",
			fragment: records.RenderReadOnly(gbr2020),
			want: []string{
				`<div class="row" id="edit-row-3">`,
				`<span class="period">2020</span><span class="value">13.2%</span>`,
				`data-on:click="@get(&#39;/edit/rows/3/edit&#39;)">Edit</button>`,
			},
			wantNot: []string{"Delete"},
		},
		{
			name: "delete list row",
			fragment: records.Fragment{
				Region: records.RowRegion(records.ListDelete, 3), Kind: records.KindReadOnlyRow,
				List: records.ListDelete, Observation: &gbr2020,
			},
			want: []string{
				`id="delete-row-3"`,
				`confirm(&#34;Delete data for year 2020?&#34;) &amp;&amp; @delete(&#39;/delete/rows/3&#39;)`,
			},
			wantNot: []string{">Edit<"},
		},
		{
			name: "editing row with annotation",
			fragment: func() records.Fragment {
				f := records.RenderEditing(gbr2020)
				f.Input = "abc"
				f.Annotation = `value "abc" is not a number`
				return f
			}(),
			want: []string{
				`<div class="row editing" id="edit-row-3"`,
				`data-signals="{&#34;values&#34;:{&#34;v3&#34;:&#34;abc&#34;}}"`,
				`data-bind:values.v3=""`,
				`@put(&#39;/edit/rows/3?period=2020&#39;)`,
				`@get(&#39;/edit/rows/3&#39;)`,
				`<span class="annotation">value &#34;abc&#34; is not a number</span>`,
			},
		},
		{
			name: "list",
			fragment: records.Fragment{
				Region: records.ListRegion(records.ListEdit), Kind: records.KindList, List: records.ListEdit,
				Entity: &france, Observations: []core.Observation{gbr2020},
			},
			want: []string{
				`<div class="record-list" id="edit-list">`,
				`<h5>France (FRA)</h5>`,
				`<span>Top 1% Share</span>`,
				`id="edit-row-3"`,
			},
		},
		{
			name: "empty list",
			fragment: records.Fragment{
				Region: records.ListRegion(records.ListDelete), Kind: records.KindList, List: records.ListDelete,
				Entity: &france,
			},
			want: []string{`id="delete-list"`, "No records found for this country."},
		},
		{
			name:     "status",
			fragment: records.Fragment{Region: records.RegionDeleteStatus, Kind: records.KindStatus, Message: "Deleted 2 records."},
			want:     []string{`<div class="status success" id="delete-status">Deleted 2 records.</div>`},
		},
		{
			name:     "error in status region",
			fragment: records.Fragment{Region: records.RegionAppendArea, Kind: records.KindError, Message: "Missing or invalid period."},
			want:     []string{`<div class="status error" id="append-area">Missing or invalid period.</div>`},
		},
		{
			name:     "error in row region",
			fragment: records.Fragment{Region: records.RowRegion(records.ListEdit, 9), Kind: records.KindError, Message: "Record not found."},
			want:     []string{`<div class="row error" id="edit-row-9">Record not found.</div>`},
		},
		{
			name: "append form",
			fragment: records.Fragment{
				Region: records.RegionAppendArea, Kind: records.KindAppendForm, Entity: &france, Period: 2019,
			},
			want: []string{
				`<h5>Adding for: France (FRA)</h5>`,
				`Next Year: <strong>2019</strong>`,
				`@post(&#39;/append/confirm?code=FRA&amp;period=2019&#39;)`,
			},
		},
		{
			name:     "empty renders bare region",
			fragment: records.Fragment{Region: records.RowRegion(records.ListDelete, 3), Kind: records.KindEmpty},
			want:     []string{`<div id="delete-row-3"></div>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := render(t, Fragment(tt.fragment))
			for _, want := range tt.want {
				assert.Contains(t, html, want)
			}
			for _, not := range tt.wantNot {
				assert.NotContains(t, html, not)
			}
		})
	}
}

func TestReports(t *testing.T) {
	latest := []core.LatestObservation{
		{Entity: core.Entity{Code: "USA", Name: "United States of America"}, Period: 2020, Value: decimal.RequireFromString("20.5")},
	}

	t.Run("empty table", func(t *testing.T) {
		assert.Equal(t, `<p class="muted">No data found.</p>`, render(t, DataTable([]string{"A"}, nil)))
	})

	t.Run("trend", func(t *testing.T) {
		html := render(t, TrendReport(france, []core.Observation{gbr2020}))
		assert.Contains(t, html, `<h5 class="report-title">Trend for: France</h5>`)
		assert.Contains(t, html, `<th>Year</th><th>Top 1% Share</th>`)
		assert.Contains(t, html, `<td>2020</td><td>13.2%</td>`)
	})

	t.Run("latest", func(t *testing.T) {
		html := render(t, LatestTable(latest))
		assert.Contains(t, html, `<th>Country</th><th>Latest Year</th><th>Share</th>`)
		assert.Contains(t, html, `<td>United States of America</td><td>2020</td><td>20.5%</td>`)
	})

	t.Run("extremes", func(t *testing.T) {
		html := render(t, Extremes(latest, nil))
		assert.Contains(t, html, `<h5 class="extreme-high">Highest Inequality</h5>`)
		assert.Contains(t, html, `<h5 class="extreme-low">Lowest Inequality</h5>`)
		assert.Contains(t, html, `<td>United States of America</td><td>20.5%</td>`)
		assert.Contains(t, html, "No data found.")
	})

	t.Run("sub-region ranking", func(t *testing.T) {
		html := render(t, SubRegionRanking(2020, latest))
		assert.Contains(t, html, `<th>Country</th><th>Share (2020)</th>`)
		assert.Contains(t, html, `<td>United States of America</td><td>20.5%</td>`)
	})

	t.Run("regional max", func(t *testing.T) {
		html := render(t, RegionalMax([]core.SubRegionMax{
			{SubRegion: core.SubRegion{Code: "154", Name: "Northern Europe"}, Period: 2020, Value: decimal.RequireFromString("13.2")},
		}))
		assert.Contains(t, html, `<th>Sub Region</th><th>Max Share</th>`)
		assert.Contains(t, html, `<td>Northern Europe</td><td>13.2%</td>`)
		assert.Equal(t, `<p class="muted">No data found.</p>`, render(t, RegionalMax(nil)))
	})

	t.Run("select", func(t *testing.T) {
		html := render(t, Select("region", "Select Region", []Option{{Value: "150", Label: "Europe & Co"}}))
		assert.Equal(t, `<select data-bind:region><option value="">Select Region</option><option value="150">Europe &amp; Co</option></select>`, html)
	})

	t.Run("region", func(t *testing.T) {
		assert.Equal(t, `<div id="trend-result"></div>`, render(t, Region("trend-result", nil)))
	})

	t.Run("period select", func(t *testing.T) {
		html := render(t, PeriodSelect([]int{2020, 2019}, Get("/extremes/report")))
		assert.Contains(t, html, `<select data-bind:period data-on:change="@get(&#39;/extremes/report&#39;)">`)
		assert.Contains(t, html, `<option value="2020">2020</option><option value="2019">2019</option>`)
	})
}

func TestLayout(t *testing.T) {
	t.Run("entity options", func(t *testing.T) {
		html := render(t, EntityOptions([]core.Entity{france, {Code: "USA", Name: "United States of America"}}, "USA"))
		assert.Contains(t, html, `<option value="FRA">France (FRA)</option>`)
		assert.Contains(t, html, `<option value="USA" selected>United States of America (USA)</option>`)
	})

	t.Run("entity select", func(t *testing.T) {
		html := render(t, EntitySelect("edit", Get("/edit/list")))
		assert.Contains(t, html, `id="entity-options-edit"`)
		assert.Contains(t, html, `data-init="@get(&#39;/entities/options?page=edit&#39;)"`)
		assert.Contains(t, html, `-- Select Country --`)
	})

	t.Run("page", func(t *testing.T) {
		html := render(t, Page("Trend", "/trend", false, Placeholder("x", "hint")))
		assert.Contains(t, html, `<title>Trend - Income Share</title>`)
		assert.Contains(t, html, `<a href="/trend" class="active">Trend</a>`)
		assert.Contains(t, html, `<div id="x"><p class="muted">hint</p></div>`)
		assert.NotContains(t, html, "/reload")
	})

	t.Run("dev page reloads", func(t *testing.T) {
		assert.Contains(t, render(t, Page("Home", "/", true, nil)), `@get('/reload'`)
	})
}

func TestConfirmed(t *testing.T) {
	assert.Equal(t, `confirm("Delete \"x\"?") && @delete('/a')`, Confirmed(`Delete "x"?`, Delete("/a")))
}
