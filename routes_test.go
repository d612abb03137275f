package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"resonanceAPI/handlers"
	"resonanceAPI/middleware"
)

func testRouter(t *testing.T, pingErr error) *mux.Router {
	t.Helper()
	reg := prometheus.NewRegistry()
	return newRouter(routerDeps{
		users:       handlers.NewUserHandler(nil, nil),
		checkins:    handlers.NewCheckinHandler(nil, nil, nil, nil),
		wellness:    handlers.NewWellnessHandler(nil, nil, nil),
		webhooks:    handlers.NewWebhookHandler(nil, "", nil),
		auth:        middleware.NewClerkAuth(func(context.Context, string) (string, error) { return "", errors.New("no") }, nil),
		limiter:     middleware.NewRateLimiter(100, 100),
		httpMetrics: middleware.NewHTTPMetrics(reg),
		requestLog:  middleware.RequestLogger(zap.NewNop()),
		gatherer:    reg,
		metricsUser: "admin",
		metricsPass: "secret",
		ping:        func(context.Context) error { return pingErr },
	})
}

func TestRouteMatching(t *testing.T) {
	r := testRouter(t, nil)

	cases := []struct {
		method, path, template string
	}{
		{"GET", "/api/v1/checkins/calendar", "/api/v1/checkins/calendar"},
		{"GET", "/api/v1/checkins/2026-06-19", "/api/v1/checkins/{date:[0-9]{4}-[0-9]{2}-[0-9]{2}}"},
		{"DELETE", "/api/v1/checkins/2026-06-19", "/api/v1/checkins/{date:[0-9]{4}-[0-9]{2}-[0-9]{2}}"},
		{"POST", "/api/v1/wellness/score", "/api/v1/wellness/score"},
		{"GET", "/api/v1/wellness/streak", "/api/v1/wellness/streak"},
		{"PUT", "/api/v1/user", "/api/v1/user"},
		{"POST", "/webhooks/clerk", "/webhooks/clerk"},
	}
	for _, tc := range cases {
		var match mux.RouteMatch
		req := httptest.NewRequest(tc.method, tc.path, nil)
		require.True(t, r.Match(req, &match), "%s %s", tc.method, tc.path)
		tpl, err := match.Route.GetPathTemplate()
		require.NoError(t, err)
		assert.Equal(t, tc.template, tpl, "%s %s", tc.method, tc.path)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/checkins/june", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := testRouter(t, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/wellness/summary", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t, nil).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	testRouter(t, errors.New("down")).ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsRequireBasicAuth(t *testing.T) {
	r := testRouter(t, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest("GET", "/metrics", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/debug/pprof/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
