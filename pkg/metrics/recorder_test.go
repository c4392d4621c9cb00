package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderObserveOracle(t *testing.T) {
	r := NewRecorder()
	r.ObserveOracle("forecast", "ok", 300*time.Millisecond, TokenUsage{PromptTokens: 120, CompletionTokens: 80})
	r.ObserveOracle("forecast", "schema_validation", time.Second, TokenUsage{})

	require.Equal(t, 1.0, testutil.ToFloat64(r.oracleRequests.WithLabelValues("forecast", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.oracleRequests.WithLabelValues("forecast", "schema_validation")))
	require.Equal(t, 120.0, testutil.ToFloat64(r.oracleTokens.WithLabelValues("forecast", "prompt")))
	require.Equal(t, 80.0, testutil.ToFloat64(r.oracleTokens.WithLabelValues("forecast", "completion")))
}

func TestRecorderHandlerServesMetrics(t *testing.T) {
	r := NewRecorder()
	r.ObserveAction("chat", false)
	r.SetActiveSessions(3)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `breatheeasy_action_results_total{action="chat",success="false"} 1`)
	require.Contains(t, rec.Body.String(), "breatheeasy_dashboard_sessions 3")
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveOracle("chat", "ok", time.Second, TokenUsage{})
	r.ObserveAction("chat", true)
	r.SetActiveSessions(1)
}

func TestTokenUsageIsZero(t *testing.T) {
	require.True(t, TokenUsage{}.IsZero())
	require.False(t, TokenUsage{CompletionTokens: 1}.IsZero())
}
