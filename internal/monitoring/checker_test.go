package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err   error
	calls atomic.Int32
}

func (p *fakePinger) Ping(context.Context) error {
	p.calls.Add(1)
	return p.err
}

type fakePurger struct {
	n     int
	err   error
	calls atomic.Int32
}

func (p *fakePurger) PurgeRevocations(context.Context) (int, error) {
	p.calls.Add(1)
	return p.n, p.err
}

func TestChecker_CheckHealthy(t *testing.T) {
	m := NewMetricsForTesting()
	purger := &fakePurger{n: 3}
	c := NewChecker(&fakePinger{}, purger, m, time.Minute, clockwork.NewFakeClock())

	c.Check(context.Background())

	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreUp), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.RevocationsPurged), 0)
	assert.Equal(t, int32(1), purger.calls.Load())
}

func TestChecker_CheckStoreDown(t *testing.T) {
	m := NewMetricsForTesting()
	m.StoreUp.Set(1)
	purger := &fakePurger{}
	c := NewChecker(&fakePinger{err: errors.New("connection refused")}, purger, m, time.Minute, clockwork.NewFakeClock())

	c.Check(context.Background())

	assert.InDelta(t, 0, testutil.ToFloat64(m.StoreUp), 0)
	assert.Equal(t, int32(0), purger.calls.Load())
}

func TestChecker_CheckPurgeError(t *testing.T) {
	m := NewMetricsForTesting()
	c := NewChecker(&fakePinger{}, &fakePurger{n: 5, err: errors.New("locked")}, m, time.Minute, clockwork.NewFakeClock())

	c.Check(context.Background())

	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreUp), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.RevocationsPurged), 0)
}

func TestChecker_NilPurger(t *testing.T) {
	m := NewMetricsForTesting()
	c := NewChecker(&fakePinger{}, nil, m, time.Minute, clockwork.NewFakeClock())

	c.Check(context.Background())
	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreUp), 0)
}

func TestChecker_RunTicksAndStopsOnCancel(t *testing.T) {
	m := NewMetricsForTesting()
	pinger := &fakePinger{}
	clock := clockwork.NewFakeClock()
	c := NewChecker(pinger, nil, m, time.Minute, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return pinger.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Checker.Run did not stop after context cancellation")
	}
}

func TestChecker_DefaultInterval(t *testing.T) {
	c := NewChecker(&fakePinger{}, nil, NewMetricsForTesting(), 0, nil)
	assert.Equal(t, DefaultCheckInterval, c.interval)
}
