package search

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/incomeshare/internal/ui/features"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
)

func TestSearchPage(t *testing.T) {
	fixture := features.SetupTestFixture(t)
	h := NewHandlers(fixture.Env)

	rec := httptest.NewRecorder()
	h.SearchPage(rec, httptest.NewRequest(http.MethodGet, "/search", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-bind:keyword")
	assert.Contains(t, rec.Body.String(), "data-on:input__debounce.500ms")
}

func TestResults(t *testing.T) {
	tests := []struct {
		name        string
		keyword     string
		wantBody    []string
		notWantBody []string
	}{
		{
			name:    "latest observation per match, highest first",
			keyword: "united",
			wantBody: []string{
				"<td>United States of America</td><td>2020</td><td>20.5%</td></tr><tr><td>United Kingdom</td><td>2020</td><td>13.2%</td>",
			},
			notWantBody: []string{"2019"},
		},
		{
			name:     "no match",
			keyword:  "atlantis",
			wantBody: []string{"No data found."},
		},
		{
			name:     "blank keyword clears",
			keyword:  "   ",
			wantBody: []string{`<div id="search-results"></div>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := features.SetupTestFixture(t)
			h := NewHandlers(fixture.Env)

			rec := httptest.NewRecorder()
			h.Results(rec, features.DatastarRequest(t, http.MethodGet, "/search/results", common.PageSignals{Keyword: tt.keyword}))

			body := rec.Body.String()
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
			for _, notWant := range tt.notWantBody {
				assert.NotContains(t, body, notWant)
			}
		})
	}
}

func TestResults_StoreFailure(t *testing.T) {
	fixture := features.SetupTestFixture(t).WithFailingReads()
	h := NewHandlers(fixture.Env)

	rec := httptest.NewRecorder()
	h.Results(rec, features.DatastarRequest(t, http.MethodGet, "/search/results", common.PageSignals{Keyword: "united"}))

	body := rec.Body.String()
	assert.Contains(t, body, `<div class="status error" id="search-results">Search failed: connection refused</div>`)
	assert.Contains(t, body, `"text":"Search failed: connection refused"`)
}
