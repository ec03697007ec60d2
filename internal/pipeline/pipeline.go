package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/population-dashboard/internal/dataset"
	"github.com/couchcryptid/population-dashboard/internal/domain"
	"github.com/couchcryptid/population-dashboard/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

// Extractor reads every raw record from the source.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRecord, error)
}

// Transformer converts raw records into canonical observations.
type Transformer interface {
	Transform(raws []domain.RawRecord) ([]domain.Observation, domain.NormalizeReport)
}

// Loader writes the canonical observations to one destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, obs []domain.Observation) error
}

// Report summarizes one ingest run.
type Report struct {
	domain.NormalizeReport
	Loaded   map[string]int
	Duration time.Duration
}

// Pipeline orchestrates a single extract-normalize-load pass.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock

	maxAttempts int
	backoff     time.Duration
	maxBackoff  time.Duration
}

// New creates a Pipeline with the given stages and observability. Loaders run
// in order.
func New(e Extractor, t Transformer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		maxAttempts: 3,
		backoff:     200 * time.Millisecond,
		maxBackoff:  5 * time.Second,
	}
}

// WithClock replaces the clock used for timing and retry sleeps.
func (p *Pipeline) WithClock(c clockwork.Clock) *Pipeline {
	p.clock = c
	return p
}

// Run extracts, normalizes, and loads once. It fails if nothing survives
// normalization or if any loader still fails after its retries.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	start := p.clock.Now()
	report := Report{Loaded: make(map[string]int, len(p.loaders))}

	raws, err := p.extractor.Extract(ctx)
	if err != nil {
		return report, fmt.Errorf("extract: %w", err)
	}

	obs, nr := p.transformer.Transform(raws)
	report.NormalizeReport = nr
	if len(obs) == 0 {
		return report, fmt.Errorf("normalize %d records: %w", nr.Read, dataset.ErrEmpty)
	}

	for _, l := range p.loaders {
		if err := p.loadWithRetry(ctx, l, obs); err != nil {
			return report, fmt.Errorf("load %s: %w", l.Name(), err)
		}
		report.Loaded[l.Name()] = len(obs)
		p.metrics.ObservationsPublished.WithLabelValues(l.Name()).Add(float64(len(obs)))
	}

	report.Duration = p.clock.Since(start)
	p.logger.Info("ingest complete",
		"observations", len(obs),
		"dropped", nr.Dropped(),
		"loaders", len(p.loaders),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// loadWithRetry retries a failing loader with exponential backoff.
func (p *Pipeline) loadWithRetry(ctx context.Context, l Loader, obs []domain.Observation) error {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = l.Load(ctx, obs); err == nil {
			return nil
		}
		if ctx.Err() != nil || attempt == p.maxAttempts {
			break
		}
		p.logger.Warn("load failed, retrying",
			"loader", l.Name(),
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		if !p.sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, p.maxBackoff)
	}
	return err
}

func (p *Pipeline) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
