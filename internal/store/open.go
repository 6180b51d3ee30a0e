package store

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/resilience"
)

// Open connects to the backend named by cfg.Driver, retrying transient
// connection failures.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	retryCfg := resilience.FromRetryConfig(cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoffMs, cfg.Retry.MaxBackoffMs)
	retryCfg.OnRetry = resilience.RetryLogger("store.open")

	switch cfg.Driver {
	case "sqlite":
		return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (Store, error) {
			st, err := NewSQLite(cfg.DatabaseURL)
			if err != nil {
				return nil, err
			}
			zap.L().Debug("opened sqlite store", zap.String("path", cfg.DatabaseURL))
			return st, nil
		})
	case "postgres":
		return resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (Store, error) {
			st, err := NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{
				MaxConns: cfg.MaxConns,
				MinConns: cfg.MinConns,
			})
			if err != nil {
				return nil, err
			}
			zap.L().Debug("opened postgres store", zap.Int32("max_conns", cfg.MaxConns))
			return st, nil
		})
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}
