package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExporter(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())

	t.Run("RecordJobOutcome", func(t *testing.T) {
		exporter.RecordJobOutcome("completed", 100*time.Millisecond)
		exporter.RecordJobOutcome("completed", 200*time.Millisecond)
		exporter.RecordJobOutcome("failed", 150*time.Millisecond)
		exporter.SetActiveJobs(3)
	})

	t.Run("RecordLockDecision", func(t *testing.T) {
		exporter.RecordLockDecision("acquired")
		exporter.RecordLockDecision("superseded")
		exporter.IncLockBackendFallback()
	})

	t.Run("RecordAICall", func(t *testing.T) {
		exporter.RecordAICall("success", 500*time.Millisecond)
		exporter.RecordAICallError("timeout")
	})

	t.Run("RecordDispatch", func(t *testing.T) {
		exporter.RecordDispatch("CHAT", "success", 80*time.Millisecond)
		exporter.RecordDispatch("CREATE_ORDER", "error", 120*time.Millisecond)
		exporter.RecordRateLimited("platform-1")
	})
}

func TestPrometheusExporterHandler(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())

	exporter.RecordJobOutcome("completed", 100*time.Millisecond)
	exporter.RecordLockDecision("acquired")
	exporter.RecordDispatch("CHAT", "success", 50*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	w := httptest.NewRecorder()

	exporter.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "chatrelay_jobs_total")
	assert.Contains(t, body, "chatrelay_lock_decisions_total")
	assert.Contains(t, body, "chatrelay_dispatch_total")
}

func TestPrometheusExporterSatisfiesFallbackRecorder(t *testing.T) {
	var _ interface{ IncLockBackendFallback() } = (*PrometheusExporter)(nil)

	exporter := NewPrometheusExporter(DefaultConfig())
	exporter.IncLockBackendFallback()

	snap := exporter.Snapshot()
	assert.NotNil(t, snap)
}

func TestExportText(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())
	exporter.RecordJobOutcome("completed", 10*time.Millisecond)

	text, err := exporter.ExportText()
	require.NoError(t, err)
	assert.True(t, strings.Contains(text, "chatrelay_jobs_total"))
}

func TestClose(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())
	require.NoError(t, exporter.Close())
}
