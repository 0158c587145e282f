package httputil

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/starbox/internal/monitoring"
)

func newMetrics(t *testing.T) *monitoring.Metrics {
	t.Helper()
	m, err := monitoring.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return m
}

func TestRateLimitedClient_Paces(t *testing.T) {
	mock := NewMockHTTPClient()
	client := NewRateLimitedClient(mock, 20, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}
	// One token up front, then two more at 50ms intervals.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, 3, mock.RequestCount())
}

func TestRateLimitedClient_Unlimited(t *testing.T) {
	mock := NewMockHTTPClient()
	client := NewRateLimitedClient(mock, 0, 0)
	for i := 0; i < 50; i++ {
		req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, 50, mock.RequestCount())
}

func TestRateLimitedClient_ContextCancelled(t *testing.T) {
	mock := NewMockHTTPClient()
	client := NewRateLimitedClient(mock, 0.001, 1)

	req, _ := http.NewRequest(http.MethodGet, "http://example.test", nil)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, "http://example.test", nil)
	_, err = client.Do(req)
	assert.Error(t, err)
	assert.Equal(t, 1, mock.RequestCount())
}

func TestInstrumentedClient(t *testing.T) {
	m := newMetrics(t)
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "ok").
		AddResponse(http.StatusServiceUnavailable, "busy").
		AddErrorResponse(errors.New("connection refused"))
	client := NewInstrumentedClient(mock, m)

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodPost, "http://example.test", nil)
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
		}
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogRequests.WithLabelValues("error")))
}

func TestLoggingMiddleware(t *testing.T) {
	m := newMetrics(t)
	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) { logged = append(logged, format) })
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })

	mux := http.NewServeMux()
	mux.HandleFunc("/api/points", func(w http.ResponseWriter, r *http.Request) { WriteJSONOK(w, []int{}) })
	h := LoggingMiddleware(mux, m)

	for _, path := range []string{"/api/points", "/nope", "/also-nope"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ViewerRequests.WithLabelValues("/api/points", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ViewerRequests.WithLabelValues("unmatched", "404")))
	assert.Len(t, logged, 3)
}
