// Package dataset aggregates all catalog sources into a single wait-time
// table.
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lcaslokonon/disney-wait-times/internal/domain"
	"github.com/lcaslokonon/disney-wait-times/internal/observability"
	"github.com/lcaslokonon/disney-wait-times/internal/touringplans"
)

// Fetcher downloads and normalizes one source.
type Fetcher interface {
	Fetch(ctx context.Context, src touringplans.Source) ([]domain.WaitSample, error)
}

// Dataset is one complete aggregated snapshot, rebuilt from scratch on every
// build.
type Dataset struct {
	Samples []domain.WaitSample
	BuiltAt time.Time
	Dropped int // no-data rows removed during aggregation
}

// Builder fetches every catalog source in order and concatenates the results.
type Builder struct {
	catalog touringplans.Catalog
	fetcher Fetcher
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Builder over the given catalog.
func New(catalog touringplans.Catalog, fetcher Fetcher, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		catalog: catalog,
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
	}
}

// Build fetches each source sequentially in catalog order and concatenates the
// normalized rows, preserving every source's internal order. Rows the feed
// marked as having no data are dropped and counted. Any source failure aborts
// the whole build; there is no partial table.
func (b *Builder) Build(ctx context.Context) (Dataset, error) {
	start := time.Now()

	var samples []domain.WaitSample
	dropped := 0

	for _, src := range b.catalog.Sources() {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		fetchStart := time.Now()
		rows, err := b.fetcher.Fetch(ctx, src)
		if err != nil {
			b.metrics.FetchErrors.WithLabelValues(touringplans.ErrorLabel(err)).Inc()
			return Dataset{}, fmt.Errorf("fetch %s: %w", src.Attraction, err)
		}
		b.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
		b.metrics.SamplesFetched.WithLabelValues(src.Attraction).Add(float64(len(rows)))

		kept := 0
		for _, s := range rows {
			if s.NoData {
				dropped++
				continue
			}
			samples = append(samples, s)
			kept++
		}

		b.logger.Debug("source aggregated",
			"attraction", src.Attraction, "rows", len(rows), "kept", kept)
	}

	b.metrics.SentinelRowsDropped.Add(float64(dropped))
	b.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	b.metrics.DatasetRows.Set(float64(len(samples)))

	b.logger.Info("dataset built",
		"sources", b.catalog.Len(), "rows", len(samples), "dropped", dropped)

	return Dataset{
		Samples: samples,
		BuiltAt: time.Now().UTC(),
		Dropped: dropped,
	}, nil
}
