package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"traffic-monitor-service/internal/domain"
	"traffic-monitor-service/internal/ports"
)

// Pause between route fetches within one cycle. A deliberate throttle
// for the provider's per-key rate limit, not a performance artifact.
const interRoutePause = 200 * time.Millisecond

// Drives the collection loop: one cycle fetches every configured route
// in order, forwards each outcome to the sink, then waits until the
// next cycle. The loop has two states, running and stopped, and leaves
// running only when the context is cancelled.
//
// One cycle, one route at a time, strictly sequential: the provider's
// per-key rate limit is the binding constraint, not throughput.
type Collector struct {
	routes   []domain.RouteSpec
	pool     *KeyPool
	provider ports.RouteProvider
	sink     ports.ResponseSink
	log      *zap.SugaredLogger

	// Injected for tests; default to the wall clock and the band table.
	now      func() time.Time
	interval func(hour int) time.Duration
	pause    time.Duration
}

func NewCollector(
	routes []domain.RouteSpec,
	pool *KeyPool,
	provider ports.RouteProvider,
	sink ports.ResponseSink,
	log *zap.SugaredLogger,
) *Collector {
	return &Collector{
		routes:   routes,
		pool:     pool,
		provider: provider,
		sink:     sink,
		log:      log,
		now:      time.Now,
		interval: IntervalFor,
		pause:    interRoutePause,
	}
}

// Run cycles until ctx is cancelled. Per-route failures (transport
// errors, exhausted keys) are recorded and never terminate the loop;
// cancellation is the only way out and always returns nil.
func (c *Collector) Run(ctx context.Context) error {
	c.log.Infow("collection loop starting", "routes", len(c.routes), "keys", c.pool.Len())

	for {
		if ctx.Err() != nil {
			c.log.Info("collection loop stopped")
			return nil
		}

		wait := c.runCycle(ctx)

		c.log.Infow("cycle complete", "next_in", wait.Round(time.Second).String())
		if !sleepCtx(ctx, wait) {
			c.log.Info("collection loop stopped")
			return nil
		}
	}
}

// Execute one pass over all routes and return how long to wait before
// the next one. The interval is re-evaluated every cycle so a long
// off-peak cycle shortens as soon as peak hours begin; the wait is the
// interval minus the time the cycle itself consumed, clamped at zero.
func (c *Collector) runCycle(ctx context.Context) time.Duration {
	start := c.now()
	interval := c.interval(start.Hour())

	c.log.Infow("collection cycle starting", "interval", interval.String())

	for _, route := range c.routes {
		c.fetchRoute(ctx, route)

		if !sleepCtx(ctx, c.pause) {
			return 0
		}
	}

	elapsed := c.now().Sub(start)
	return nextDelay(interval, elapsed)
}

// Fetch one route with the next usable key and record the outcome.
// Usage is counted only on success; an exhausted pool is recorded as a
// failure outcome for this route and the cycle moves on.
func (c *Collector) fetchRoute(ctx context.Context, route domain.RouteSpec) {
	key, err := c.pool.NextUsable()
	if err != nil {
		c.log.Errorw("no usable API key", "route", route.ID, "error", err)
		c.store(ctx, domain.FailureOutcome(route, c.now(), "", err.Error()))
		return
	}

	outcome := c.provider.Fetch(ctx, route, key)

	if outcome.OK() {
		c.pool.RecordSuccess(key)
		m := outcome.Metrics
		c.log.Infow("route fetched",
			"route", route.ID,
			"duration_s", m.DurationSeconds,
			"delay_s", m.DelaySeconds,
			"key", domain.MaskKey(key))
	} else {
		c.log.Errorw("route fetch failed", "route", route.ID, "reason", outcome.FailReason)
	}

	c.store(ctx, outcome)
}

func (c *Collector) store(ctx context.Context, outcome domain.FetchOutcome) {
	if err := c.sink.Store(ctx, outcome); err != nil {
		c.log.Errorw("store outcome failed", "route", outcome.Route.ID, "error", err)
	}
}

// Inter-cycle wait: interval minus elapsed, clamped at zero so a slow
// cycle starts the next one immediately instead of sleeping negative
// or bursting to catch up.
func nextDelay(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}

// Sleep that honors cancellation. Reports false when ctx was cancelled
// before the full duration passed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
