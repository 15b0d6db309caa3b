package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jsamit27/ava/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTool(t *testing.T) {
	m := NewPrometheusMetrics()
	m.ObserveTool("car_retrieve", domain.ToolStatusSuccess, 0.01)
	m.ObserveTool("car_retrieve", domain.ToolStatusSuccess, 0.02)
	m.ObserveTool("car_retrieve", domain.ToolStatusUnsure, 0.02)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("car_retrieve", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("car_retrieve", "unsure")))
}

func TestObservePlanAndAva(t *testing.T) {
	m := NewPrometheusMetrics()
	m.ObservePlan("tool")
	m.ObservePlan("planner_fail")
	m.ObserveAva("ask", nil, 1.2)
	m.ObserveAva("ask", errors.New("timeout"), 30)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.planActions.WithLabelValues("tool")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.avaRequests.WithLabelValues("ask", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.avaRequests.WithLabelValues("ask", "error")))
}

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	m := NewPrometheusMetrics()

	r := chi.NewRouter()
	r.Use(m.InstrumentHandler)
	r.Get("/api/logs", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/logs?session_id=abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/logs", "418")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), "ava_http_requests_total"))
}
