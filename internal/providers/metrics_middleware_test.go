package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type middlewareTestMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
}

func (m *middlewareTestMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *middlewareTestMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *middlewareTestMetrics) IncCommandsTotal(_ string)                        {}
func (m *middlewareTestMetrics) IncInteractionsTotal(_ string)                    {}
func (m *middlewareTestMetrics) IncStarsRecorded()                                {}
func (m *middlewareTestMetrics) IncNotificationsTotal(_ string)                   {}
func (m *middlewareTestMetrics) IncCacheHits()                                    {}
func (m *middlewareTestMetrics) IncCacheMisses()                                  {}
func (m *middlewareTestMetrics) ObservePersistenceDuration(_ time.Duration)       {}

func TestMetricsMiddleware_CapturesStatusAndEndpoint(t *testing.T) {
	metrics := &middlewareTestMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	mw := MetricsMiddleware(metrics, handler)

	req := httptest.NewRequest(http.MethodPost, "/slack/command", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, 1, metrics.requestCalls)
	assert.Equal(t, "/slack/command", metrics.requestEndpoint)
	assert.Equal(t, http.StatusBadRequest, metrics.requestStatus)
	assert.Equal(t, 1, metrics.durationCalls)
}

func TestMetricsMiddleware_DefaultStatus200(t *testing.T) {
	metrics := &middlewareTestMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mw := MetricsMiddleware(metrics, handler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, metrics.requestStatus)
}

func TestMetricsMiddleware_UnroutedPathsShareOneLabel(t *testing.T) {
	metrics := &middlewareTestMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	mw := MetricsMiddleware(metrics, handler)

	for _, path := range []string{"/wp-admin", "/slack/commandX", "/favicon.ico"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, req)
		assert.Equal(t, "other", metrics.requestEndpoint, path)
	}
	assert.Equal(t, 3, metrics.requestCalls)
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/slack/command", endpointLabel("/slack/command"))
	assert.Equal(t, "/slack/interact", endpointLabel("/slack/interact"))
	assert.Equal(t, "/health", endpointLabel("/health"))
	assert.Equal(t, "other", endpointLabel("/anything/else"))
}

func TestStatusWriter_WriteHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
