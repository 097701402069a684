// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/incomeshare/internal/state"
	"github.com/leapstack-labs/incomeshare/internal/testutil"
	"github.com/leapstack-labs/incomeshare/internal/ui/features/common"
	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// ErrStoreDown is returned by every read a FailingStore fails.
var ErrStoreDown = errors.New("connection refused")

// FailingStore wraps a store and fails the reads behind the reports.
// Entity lookups and page option lists still succeed.
type FailingStore struct {
	core.EntityStore
}

func (FailingStore) GetObservations(context.Context, string) ([]core.Observation, error) {
	return nil, ErrStoreDown
}

func (FailingStore) SearchLatest(context.Context, string) ([]core.LatestObservation, error) {
	return nil, ErrStoreDown
}

func (FailingStore) RankPeriod(context.Context, int, int, bool) ([]core.LatestObservation, error) {
	return nil, ErrStoreDown
}

func (FailingStore) RankSubRegion(context.Context, string, int) ([]core.LatestObservation, error) {
	return nil, ErrStoreDown
}

func (FailingStore) MaxShareBySubRegion(context.Context, string, int) ([]core.SubRegionMax, error) {
	return nil, ErrStoreDown
}

// FailingSessionStore is a sessions.Store that never persists a session.
type FailingSessionStore struct{}

func (s FailingSessionStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return s.New(r, name)
}

func (s FailingSessionStore) New(_ *http.Request, name string) (*sessions.Session, error) {
	return sessions.NewSession(s, name), nil
}

func (FailingSessionStore) Save(*http.Request, http.ResponseWriter, *sessions.Session) error {
	return errors.New("securecookie: the value is too long")
}

// WithFailingReads swaps the fixture's store for a FailingStore around it.
func (f *TestFixture) WithFailingReads() *TestFixture {
	f.Env.Store = FailingStore{EntityStore: f.Store}
	return f
}

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        *state.SQLiteStore
	SessionStore *sessions.CookieStore
	Env          common.Env
}

// SetupTestFixture creates a fixture around a seeded in-memory store.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	store := testutil.NewSeededStore(t)
	sessionStore := NewTestSessionStore()

	return &TestFixture{
		Store:        store,
		SessionStore: sessionStore,
		Env: common.Env{
			Store:          store,
			Sessions:       sessionStore,
			Logger:         testutil.NewTestLogger(t),
			IsDev:          true,
			BaselinePeriod: 2024,
		},
	}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// DatastarRequest builds a request carrying signals the way the client
// sends them: in the datastar query parameter for GET, as a JSON body otherwise.
func DatastarRequest(t *testing.T, method, target string, signals any) *http.Request {
	t.Helper()

	payload, err := json.Marshal(signals)
	require.NoError(t, err)

	if method == http.MethodGet {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		req := httptest.NewRequest(method, target+sep+"datastar="+url.QueryEscape(string(payload)), nil)
		req.Header.Set("Datastar-Request", "true")
		return req
	}

	req := httptest.NewRequest(method, target, strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")
	return req
}

// WithCookies copies the cookies set on rec onto req, so a follow-up
// request carries the session of an earlier one.
func WithCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}
