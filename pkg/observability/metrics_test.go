package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/colombia-mcp/pkg/dispatch"
	"github.com/aretw0/colombia-mcp/pkg/observability"
	"github.com/aretw0/colombia-mcp/pkg/session"
)

var (
	_ dispatch.Observer = (*observability.Metrics)(nil)
	_ session.Observer  = (*observability.Metrics)(nil)
)

func TestMetrics_ObserveCall(t *testing.T) {
	m := observability.NewMetrics()

	m.ObserveCall("get-region", dispatch.OutcomeOK, 10*time.Millisecond)
	m.ObserveCall("get-region", dispatch.OutcomeOK, 20*time.Millisecond)
	m.ObserveCall("get-region-by-id", dispatch.OutcomeError, time.Millisecond)
	m.ObserveCall("made-up-1", dispatch.OutcomeUnknown, 0)
	m.ObserveCall("made-up-2", dispatch.OutcomeUnknown, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ToolCalls.WithLabelValues("get-region", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ToolCalls.WithLabelValues("get-region-by-id", "error")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ToolCalls.WithLabelValues("unknown", "unknown")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.ToolCalls))
}

func TestMetrics_Sessions(t *testing.T) {
	m := observability.NewMetrics()

	m.SessionOpened("http")
	m.SessionOpened("http")
	m.SessionClosed("http")
	m.SessionOpened("stdio")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SessionsOpened.WithLabelValues("http")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ActiveSessions.WithLabelValues("http")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ActiveSessions.WithLabelValues("stdio")))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveCall("get-city", dispatch.OutcomeOK, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	rsp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer rsp.Body.Close()
	body, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rsp.StatusCode)
	assert.Contains(t, string(body), `colombia_mcp_tool_calls_total{outcome="ok",tool="get-city"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
