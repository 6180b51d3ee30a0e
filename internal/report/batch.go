package report

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/model"
	"github.com/sells-group/geo-analytics/internal/monitoring"
)

// BatchItem is the outcome for one input coordinate. Exactly one of Result
// and Error is set.
type BatchItem struct {
	Index  int     `json:"index"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// BatchResult holds one item per input coordinate, in input order.
type BatchResult struct {
	Items  []BatchItem `json:"items"`
	Saved  int         `json:"saved"`
	Failed int         `json:"failed"`
}

// AnalyzeBatch analyzes coords concurrently and saves every valid result in
// a single store call. Invalid coordinates are reported per item and do not
// abort the batch.
func (s *Service) AnalyzeBatch(ctx context.Context, coords []geo.Coordinate) (*BatchResult, error) {
	start := s.clock.Now()

	id, err := identity(ctx)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeUnauthenticated).Add(float64(len(coords)))
		return nil, err
	}
	s.metrics.BatchSize.Observe(float64(len(coords)))

	log := zap.L().With(zap.String("user_id", id.UserID))
	log.Info("processing batch",
		zap.Int("coordinates", len(coords)),
		zap.Int("concurrency", s.concurrency),
	)

	items := make([]BatchItem, len(coords))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, c := range coords {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i].Index = i
			if err := geo.Validate(c); err != nil {
				failed.Add(1)
				items[i].Error = err.Error()
				return nil // don't abort batch on individual failure
			}
			items[i].Result = s.newResult(c, id.UserID)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "report: batch analysis")
	}

	recs := make([]model.AnalysisRecord, 0, len(items))
	for _, item := range items {
		if item.Result != nil {
			recs = append(recs, item.Result.Record)
		}
	}

	saved, err := s.store.SaveAnalyses(ctx, recs)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeError).Add(float64(len(recs)))
		return nil, eris.Wrap(err, "report: save batch")
	}

	// Saved records come back in input order.
	j := 0
	for i := range items {
		if items[i].Result == nil {
			continue
		}
		items[i].Result.Record = saved[j]
		j++
		s.metrics.ObserveHazards(items[i].Result.Report.Hazards())
	}

	s.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeSuccess).Add(float64(len(saved)))
	s.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeInvalid).Add(float64(failed.Load()))
	s.metrics.AnalysisDuration.Observe(s.clock.Since(start).Seconds())

	res := &BatchResult{Items: items, Saved: len(saved), Failed: int(failed.Load())}
	log.Info("batch complete",
		zap.Int("saved", res.Saved),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}
