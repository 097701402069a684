package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomeshare/internal/testutil"
)

func newTestServer(t *testing.T, dev bool) *httptest.Server {
	t.Helper()

	s := NewServer(Config{
		Store:         testutil.NewSeededStore(t),
		Dev:           dev,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        testutil.NewTestLogger(t),
	})
	handler, err := s.Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // test server URL
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Routes(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/", wantStatus: http.StatusOK, wantBody: "Income Inequality Records"},
		{path: "/trend", wantStatus: http.StatusOK, wantBody: "Country Income Trend"},
		{path: "/search", wantStatus: http.StatusOK, wantBody: "Keyword Search"},
		{path: "/subregion", wantStatus: http.StatusOK, wantBody: "Sub-Region Comparison"},
		{path: "/regional", wantStatus: http.StatusOK, wantBody: "Regional Max Share"},
		{path: "/extremes", wantStatus: http.StatusOK, wantBody: "Inequality Extremes"},
		{path: "/append", wantStatus: http.StatusOK, wantBody: "Add Next Year Record"},
		{path: "/edit", wantStatus: http.StatusOK, wantBody: "Update Record"},
		{path: "/delete", wantStatus: http.StatusOK, wantBody: "Delete Records"},
		{path: "/static/app.css", wantStatus: http.StatusOK, wantBody: ".feature-box"},
		{path: "/reload", wantStatus: http.StatusNotFound},
		{path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, body := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantBody != "" {
				assert.Contains(t, body, tt.wantBody)
			}
		})
	}
}

func TestServer_MetricsExposeRouteLatency(t *testing.T) {
	ts := newTestServer(t, false)

	status, _ := get(t, ts.URL+"/edit")
	require.Equal(t, http.StatusOK, status)

	status, body := get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "incomeshare_http_latency_seconds")
	assert.Contains(t, body, `route="/edit"`)
}

func TestServer_DevReload(t *testing.T) {
	ts := newTestServer(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/reload", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// The stream stays open until the client deadline; keep what arrived.
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "window.location.reload()")
}

func TestServer_IsDev(t *testing.T) {
	assert.True(t, NewServer(Config{Dev: true}).IsDev())
	assert.False(t, NewServer(Config{}).IsDev())
}
