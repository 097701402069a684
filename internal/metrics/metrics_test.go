package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findMetric(t *testing.T, name string, want map[string]string) *dto.Metric {
	t.Helper()

	mfs, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := labelsToMap(m)
			match := true
			for k, v := range want {
				if labels[k] != v {
					match = false
					break
				}
			}
			if match {
				return m
			}
		}
	}
	return nil
}

func labelsToMap(m *dto.Metric) map[string]string {
	out := map[string]string{}
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestObserveResolution(t *testing.T) {
	ObserveResolution("ambiguous")

	m := findMetric(t, "incomeshare_resolutions_total", map[string]string{"outcome": "ambiguous"})
	require.NotNil(t, m, "expected resolutions counter with outcome label")
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(1))
}

func TestObserveMutation(t *testing.T) {
	ObserveMutation("delete_range", "ok")

	m := findMetric(t, "incomeshare_mutations_total", map[string]string{"operation": "delete_range", "result": "ok"})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(1))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/edit/rows/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/edit/rows/12345", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	m := findMetric(t, "incomeshare_http_latency_seconds", map[string]string{"route": "/edit/rows/{id}", "result": "4xx"})
	require.NotNil(t, m, "expected latency histogram labelled by route pattern")
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	ObserveResolution("resolved")

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "incomeshare_resolutions_total")
}

func TestResultClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{304, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resultClass(tt.status))
	}
}
