// Package report runs location analyses for authenticated users and keeps
// their history.
package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-analytics/internal/analysis"
	"github.com/sells-group/geo-analytics/internal/auth"
	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/model"
	"github.com/sells-group/geo-analytics/internal/monitoring"
	"github.com/sells-group/geo-analytics/internal/store"
)

// ErrUnauthenticated is returned when an analysis would be saved without a
// signed-in user.
var ErrUnauthenticated = errors.New("Must be authenticated to save analysis") //nolint:staticcheck // shown to users

// Result is a saved analysis together with its full report.
type Result struct {
	Report analysis.Report      `json:"report" yaml:"report"`
	Record model.AnalysisRecord `json:"record" yaml:"record"`
	MapURL string               `json:"map_url" yaml:"map_url"`
}

// Service composes the analysis engine with the store.
type Service struct {
	store        store.Store
	clock        clockwork.Clock
	metrics      *monitoring.Metrics
	historyLimit int
	concurrency  int
}

// NewService creates a report service. clock and metrics may be nil.
func NewService(st store.Store, cfg config.AnalysisConfig, clock clockwork.Clock, metrics *monitoring.Metrics) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = monitoring.NewUnregisteredMetrics()
	}
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = store.DefaultListLimit
	}
	concurrency := cfg.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		store:        st,
		clock:        clock,
		metrics:      metrics,
		historyLimit: historyLimit,
		concurrency:  concurrency,
	}
}

func identity(ctx context.Context) (*model.Identity, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return id, nil
}

// newResult analyzes c and stamps the record for userID. c must be valid.
func (s *Service) newResult(c geo.Coordinate, userID string) *Result {
	rep := analysis.Analyze(c.Latitude, c.Longitude)
	rec := rep.Record()
	rec.ID = uuid.New().String()
	rec.UserID = userID
	rec.CreatedAt = s.clock.Now().UTC()
	return &Result{Report: rep, Record: rec, MapURL: geo.MapEmbedURL(c)}
}

// Analyze validates c, derives its report and saves it for the user in ctx.
func (s *Service) Analyze(ctx context.Context, c geo.Coordinate) (*Result, error) {
	start := s.clock.Now()

	if err := geo.Validate(c); err != nil {
		s.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeInvalid).Inc()
		return nil, err
	}

	res := s.newResult(c, "")

	id, err := identity(ctx)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeUnauthenticated).Inc()
		return nil, err
	}
	res.Record.UserID = id.UserID

	saved, err := s.store.SaveAnalysis(ctx, res.Record)
	if err != nil {
		s.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeError).Inc()
		return nil, eris.Wrap(err, "report: save analysis")
	}
	res.Record = *saved

	s.metrics.AnalysesTotal.WithLabelValues(monitoring.OutcomeSuccess).Inc()
	s.metrics.AnalysisDuration.Observe(s.clock.Since(start).Seconds())
	s.metrics.ObserveHazards(res.Report.Hazards())

	zap.L().Info("analysis saved",
		zap.String("analysis_id", res.Record.ID),
		zap.String("user_id", id.UserID),
		zap.Float64("latitude", c.Latitude),
		zap.Float64("longitude", c.Longitude),
		zap.Int("aqi", res.Report.AQI),
	)
	return res, nil
}

// History returns the caller's analyses, newest first. A non-positive limit
// uses the configured default; anything above store.MaxListLimit is capped.
func (s *Service) History(ctx context.Context, limit, offset int) ([]model.AnalysisRecord, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.historyLimit
	}
	if offset < 0 {
		offset = 0
	}
	recs, err := s.store.ListAnalyses(ctx, store.AnalysisFilter{UserID: id.UserID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, eris.Wrap(err, "report: list history")
	}
	return recs, nil
}

// Export returns the caller's entire history, newest first.
func (s *Service) Export(ctx context.Context) ([]model.AnalysisRecord, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	all := []model.AnalysisRecord{}
	for offset := 0; ; offset += store.MaxListLimit {
		page, err := s.store.ListAnalyses(ctx, store.AnalysisFilter{
			UserID: id.UserID,
			Limit:  store.MaxListLimit,
			Offset: offset,
		})
		if err != nil {
			return nil, eris.Wrap(err, "report: export history")
		}
		all = append(all, page...)
		if len(page) < store.MaxListLimit {
			return all, nil
		}
	}
}

// Get returns one of the caller's analyses with its report re-derived from
// the stored coordinate.
func (s *Service) Get(ctx context.Context, analysisID string) (*Result, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.store.GetAnalysis(ctx, id.UserID, analysisID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, eris.Wrap(err, "report: get analysis")
	}

	if rec.ModelVersion != analysis.ModelVersion {
		zap.L().Warn("report: stored analysis uses a different model version",
			zap.String("analysis_id", rec.ID),
			zap.String("stored", rec.ModelVersion),
			zap.String("current", analysis.ModelVersion),
		)
	}

	c := geo.Coordinate{Latitude: rec.Latitude, Longitude: rec.Longitude}
	return &Result{
		Report: analysis.Analyze(c.Latitude, c.Longitude),
		Record: *rec,
		MapURL: geo.MapEmbedURL(c),
	}, nil
}
