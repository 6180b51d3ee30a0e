package monitoring

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-analytics/internal/analysis"
)

func TestNewMetricsForTesting_Registerable(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	// A second registration of the same collectors is rejected.
	assert.Error(t, m.Register(reg))
}

func TestObserveHazards(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObserveHazards(analysis.Analyze(40.7128, -74.006).Hazards())

	assert.InDelta(t, 1, testutil.ToFloat64(m.HazardLevels.WithLabelValues("ground_stability", "High")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HazardLevels.WithLabelValues("flood", "Medium")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HazardLevels.WithLabelValues("tsunami", "High")), 0)
	assert.Equal(t, 5, testutil.CollectAndCount(m.HazardLevels))
}

func TestObserveAuth(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObserveAuth("signin", nil)
	m.ObserveAuth("signin", errors.New("bad password"))
	m.ObserveAuth("signin", nil)

	assert.InDelta(t, 2, testutil.ToFloat64(m.AuthRequests.WithLabelValues("signin", OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AuthRequests.WithLabelValues("signin", OutcomeError)), 0)
}
