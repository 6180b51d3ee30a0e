package report

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/monitoring"
	"github.com/sells-group/geo-analytics/internal/store"
)

func TestAnalyzeBatch_MixedValidity(t *testing.T) {
	f := newFixture(t)
	coords := []geo.Coordinate{
		newYork,
		{Latitude: 95, Longitude: 0},
		{Latitude: 51.5074, Longitude: -0.1278},
		{Latitude: 0, Longitude: -181},
		{Latitude: -33.8688, Longitude: 151.2093},
	}

	res, err := f.svc.AnalyzeBatch(f.ctx, coords)
	require.NoError(t, err)
	require.Len(t, res.Items, len(coords))
	assert.Equal(t, 3, res.Saved)
	assert.Equal(t, 2, res.Failed)

	for i, item := range res.Items {
		assert.Equal(t, i, item.Index)
	}
	assert.Equal(t, 59, res.Items[0].Result.Report.AQI)
	assert.Equal(t, "Latitude must be between -90 and 90", res.Items[1].Error)
	assert.Nil(t, res.Items[1].Result)
	assert.Equal(t, 128, res.Items[2].Result.Report.AQI)
	assert.Equal(t, "Longitude must be between -180 and 180", res.Items[3].Error)
	assert.Equal(t, 186178, res.Items[4].Result.Report.LandCost)

	recs, err := f.store.ListAnalyses(context.Background(), store.AnalysisFilter{UserID: f.user.ID})
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	assert.InDelta(t, 3, testutil.ToFloat64(f.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeSuccess)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(f.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeInvalid)), 0)
}

func TestAnalyzeBatch_RequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AnalyzeBatch(context.Background(), []geo.Coordinate{newYork})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAnalyzeBatch_Empty(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.AnalyzeBatch(f.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.Saved)
}

func TestAnalyzeBatch_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(f.ctx)
	cancel()

	_, err := f.svc.AnalyzeBatch(ctx, []geo.Coordinate{newYork, newYork})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeBatch_SaveFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewService(failingStore{Store: f.store, err: errors.New("disk full")},
		config.AnalysisConfig{BatchConcurrency: 2}, f.clock, f.metrics)

	_, err := svc.AnalyzeBatch(f.ctx, []geo.Coordinate{newYork})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
