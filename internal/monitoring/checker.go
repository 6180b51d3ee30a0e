package monitoring

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultCheckInterval is used when no interval is configured.
const DefaultCheckInterval = time.Hour

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Purger removes token revocations that can no longer match a live token.
type Purger interface {
	PurgeRevocations(ctx context.Context) (int, error)
}

// Checker runs periodic store maintenance in the background.
type Checker struct {
	pinger   Pinger
	purger   Purger
	metrics  *Metrics
	interval time.Duration
	clock    clockwork.Clock
}

// NewChecker creates a background checker. A non-positive interval falls back
// to DefaultCheckInterval.
func NewChecker(pinger Pinger, purger Purger, metrics *Metrics, interval time.Duration, clock clockwork.Clock) *Checker {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Checker{
		pinger:   pinger,
		purger:   purger,
		metrics:  metrics,
		interval: interval,
		clock:    clock,
	}
}

// Run checks once immediately and then on every tick. It blocks until ctx is
// cancelled.
func (c *Checker) Run(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting store checker", zap.Duration("interval", c.interval))

	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	c.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("store checker stopped")
			return
		case <-ticker.Chan():
			c.Check(ctx)
		}
	}
}

// Check pings the store and purges expired revocations.
func (c *Checker) Check(ctx context.Context) {
	log := zap.L().With(zap.String("component", "monitoring.checker"))

	if err := c.pinger.Ping(ctx); err != nil {
		c.metrics.StoreUp.Set(0)
		log.Error("monitoring: store ping failed", zap.Error(err))
		return
	}
	c.metrics.StoreUp.Set(1)

	if c.purger == nil {
		return
	}
	n, err := c.purger.PurgeRevocations(ctx)
	if err != nil {
		log.Error("monitoring: purge revocations failed", zap.Error(err))
		return
	}
	c.metrics.RevocationsPurged.Add(float64(n))
	log.Debug("monitoring: purged revocations", zap.Int("count", n))
}
