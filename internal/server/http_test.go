package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speechmeme/internal/memes"
)

type stubStatus struct {
	status memes.Status
}

func (s stubStatus) Status(context.Context) memes.Status {
	return s.status
}

func do(t *testing.T, srv http.Handler, path, auth string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(stubStatus{}, &Config{MasterKey: "k"})

	rec := do(t, srv, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestRequestIDPreserved(t *testing.T) {
	srv := New(stubStatus{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "my-custom-id")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "my-custom-id", rec.Header().Get("X-Request-ID"))
}

func TestSnapshotEndpoint(t *testing.T) {
	ts := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	srv := New(stubStatus{status: memes.Status{
		Present:    true,
		Timestamp:  ts,
		AgeSeconds: 3600,
		Valid:      true,
		Count:      3,
		MaxAge:     "2h0m0s",
	}}, &Config{MasterKey: "secret"})

	t.Run("requires master key", func(t *testing.T) {
		rec := do(t, srv, "/v1/snapshot", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns status", func(t *testing.T) {
		rec := do(t, srv, "/v1/snapshot", "Bearer secret")
		require.Equal(t, http.StatusOK, rec.Code)

		var got memes.Status
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Present)
		assert.True(t, got.Valid)
		assert.Equal(t, 3, got.Count)
		assert.True(t, ts.Equal(got.Timestamp))
		assert.InDelta(t, 3600, got.AgeSeconds, 0.001)
	})
}

func TestSnapshotEndpoint_Empty(t *testing.T) {
	srv := New(stubStatus{status: memes.Status{MaxAge: "2h0m0s"}}, nil)

	rec := do(t, srv, "/v1/snapshot", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"present":false,"age_seconds":0,"valid":false,"count":0,"max_age":"2h0m0s"}`, rec.Body.String())
}

func TestSnapshotEndpoint_StoreError(t *testing.T) {
	srv := New(stubStatus{status: memes.Status{Error: "redis: connection refused"}}, nil)

	rec := do(t, srv, "/v1/snapshot", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "speechmeme_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	tests := []struct {
		name           string
		config         *Config
		requestPath    string
		auth           string
		expectedStatus int
	}{
		{
			name:           "disabled - not found",
			config:         &Config{Gatherer: reg},
			requestPath:    "/metrics",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "enabled default path",
			config:         &Config{MetricsEnabled: true, Gatherer: reg},
			requestPath:    "/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "enabled custom path",
			config:         &Config{MetricsEnabled: true, MetricsEndpoint: "/internal/metrics", Gatherer: reg},
			requestPath:    "/internal/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "custom path is normalized",
			config:         &Config{MetricsEnabled: true, MetricsEndpoint: "/ops/../prom", Gatherer: reg},
			requestPath:    "/prom",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "skips auth with master key",
			config:         &Config{MetricsEnabled: true, MasterKey: "secret", Gatherer: reg},
			requestPath:    "/metrics",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(stubStatus{}, tt.config)

			rec := do(t, srv, tt.requestPath, tt.auth)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.True(t, strings.Contains(rec.Body.String(), "speechmeme_test_total 1"))
			}
		})
	}
}
