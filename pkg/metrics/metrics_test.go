package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsUpdates(t *testing.T) {
	m := New()

	m.ObserveFlush(TriggerAutosave, 10*time.Millisecond, 512, nil)
	m.ObserveFlush(TriggerManual, time.Millisecond, 900, errors.New("quota"))
	m.SetLastFlushTimestamp(time.Unix(100, 0))
	m.IncLoads("restored")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.flushesTotal.WithLabelValues(TriggerAutosave, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flushesTotal.WithLabelValues(TriggerManual, "error")))
	assert.Equal(t, 512.0, testutil.ToFloat64(m.payloadBytes))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.lastFlushGauge))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadsTotal.WithLabelValues("restored")))
	assert.NotZero(t, testutil.CollectAndCount(m.flushDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFlush(TriggerDirect, 0, 0, nil)
	m.SetLastFlushTimestamp(time.Now())
	m.IncLoads("seeded")
	assert.NotNil(t, m.Handler())
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.IncLoads("seeded")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hrboard_loads_total{outcome="seeded"} 1`)
}
