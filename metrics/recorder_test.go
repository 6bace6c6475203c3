package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	recorder := NewPrometheusRecorder(reg)

	recorder.ObserveTool("getGraph", 20*time.Millisecond, nil)
	recorder.ObserveTool("getGraph", 10*time.Millisecond, nil)
	recorder.ObserveTool("getDocument", time.Millisecond, errors.New("not found"))
	recorder.ObservePages("markdown", 12)

	assert.InDelta(t, 2, testutil.ToFloat64(recorder.toolResults.WithLabelValues("getGraph", ResultSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(recorder.toolResults.WithLabelValues("getDocument", ResultError)), 0)
	assert.InDelta(t, 12, testutil.ToFloat64(recorder.pages.WithLabelValues("markdown")), 0)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "docgraph_tool_duration_seconds")
	assert.Contains(t, rec.Body.String(), `docgraph_snapshot_pages{source="markdown"} 12`)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveTool("x", time.Second, nil)
	r.ObservePages("x", 1)
}
