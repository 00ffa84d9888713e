package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Recorders(t *testing.T) {
	m := New()

	m.IntentDispatched("farms/registerFarmRequest")
	m.IntentDispatched("farms/registerFarmRequest")
	m.CollectionSize("farms", 3)
	m.EffectCompleted("registration", "success", 1500*time.Millisecond)
	m.PersistenceFailed("farms", "write")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.intents.WithLabelValues("farms/registerFarmRequest")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.collectionSize.WithLabelValues("farms")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.effects.WithLabelValues("registration", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures.WithLabelValues("farms", "write")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.effectDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IntentDispatched("x")
		m.CollectionSize("farms", 1)
		m.EffectCompleted("registration", "failure", time.Second)
		m.PersistenceFailed("farms", "read")
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CollectionSize("dailyReport", 7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flockbook_collection_size{slice="dailyReport"} 7`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
