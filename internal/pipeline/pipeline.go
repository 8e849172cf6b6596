// Package pipeline rebuilds the aggregated wait-time dataset on an interval
// and fans each snapshot out to the configured sinks.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lcaslokonon/disney-wait-times/internal/dataset"
	"github.com/lcaslokonon/disney-wait-times/internal/observability"
)

// SnapshotBuilder produces a complete dataset snapshot.
type SnapshotBuilder interface {
	Build(ctx context.Context) (dataset.Dataset, error)
}

// Sink receives each successfully built snapshot.
type Sink interface {
	Name() string
	Store(ctx context.Context, ds dataset.Dataset) error
}

// SnapshotInfo summarizes the latest snapshot for the admin endpoints.
type SnapshotInfo struct {
	Rows    int       `json:"rows"`
	Dropped int       `json:"dropped"`
	BuiltAt time.Time `json:"built_at"`
}

// Pipeline drives the build-and-deliver cycle.
type Pipeline struct {
	builder  SnapshotBuilder
	sinks    []Sink
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	interval time.Duration
	ready    atomic.Bool

	mu          sync.Mutex
	last        SnapshotInfo
	hasSnapshot bool
}

// New creates a Pipeline. The clock is injectable so tests can step time.
func New(builder SnapshotBuilder, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, interval time.Duration) *Pipeline {
	return &Pipeline{
		builder:  builder,
		sinks:    sinks,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
		interval: interval,
	}
}

// CheckReadiness returns nil once at least one snapshot has been built and
// delivered to every sink.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no snapshot built yet")
	}
	return nil
}

// Snapshot returns a summary of the latest snapshot. ok is false before the
// first successful build.
func (p *Pipeline) Snapshot() (info SnapshotInfo, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.hasSnapshot
}

// Run builds immediately, then on every interval tick, until the context is
// cancelled. A failed cycle keeps the previous snapshot current; the next tick
// retries.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval, "sinks", len(p.sinks))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.refresh(ctx)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			p.refresh(ctx)
		}
	}
}

// refresh runs one build-and-deliver cycle.
func (p *Pipeline) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := p.clock.Now()

	ds, err := p.builder.Build(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("dataset build failed", "error", err)
		p.metrics.BuildsTotal.WithLabelValues("error").Inc()
		return
	}
	p.metrics.BuildsTotal.WithLabelValues("success").Inc()

	delivered := true
	for _, sink := range p.sinks {
		if err := sink.Store(ctx, ds); err != nil {
			p.logger.Error("snapshot delivery failed", "sink", sink.Name(), "error", err)
			p.metrics.SinkErrors.WithLabelValues(sink.Name()).Inc()
			delivered = false
			continue
		}
		p.metrics.SnapshotsDelivered.WithLabelValues(sink.Name()).Inc()
	}

	p.mu.Lock()
	p.last = SnapshotInfo{Rows: len(ds.Samples), Dropped: ds.Dropped, BuiltAt: ds.BuiltAt}
	p.hasSnapshot = true
	p.mu.Unlock()

	if delivered {
		p.ready.Store(true)
	}

	p.logger.Info("snapshot refreshed",
		"rows", len(ds.Samples),
		"dropped", ds.Dropped,
		"duration", p.clock.Since(start),
	)
}
