// Package scheduler drives the periodic aggregation cycle: fetch all
// platforms, score and rank, archive, render reports, and notify.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/elonfeng/hotradar/internal/metrics"
	"github.com/elonfeng/hotradar/internal/store"
	"github.com/elonfeng/hotradar/pkg/notify"
	"github.com/elonfeng/hotradar/pkg/platform"
	"github.com/elonfeng/hotradar/pkg/report"
	"github.com/elonfeng/hotradar/pkg/trend"
)

// Pipeline runs one complete aggregation cycle end to end.
type Pipeline struct {
	platforms []platform.Platform
	engine    *trend.Engine
	store     store.Store
	reports   *report.Writer
	notifier  *notify.Manager
	logger    *zap.Logger
}

// NewPipeline wires the cycle stages together. store, reports and
// notifier may be nil; the corresponding stage is skipped.
func NewPipeline(
	platforms []platform.Platform,
	engine *trend.Engine,
	s store.Store,
	reports *report.Writer,
	notifier *notify.Manager,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		platforms: platforms,
		engine:    engine,
		store:     s,
		reports:   reports,
		notifier:  notifier,
		logger:    logger,
	}
}

// RunOnce executes a single cycle for the given date and returns the
// ranked result. Archive, report and notification failures are logged
// but do not fail the cycle once ranking has succeeded.
func (p *Pipeline) RunOnce(ctx context.Context, today time.Time) (*trend.Result, error) {
	started := time.Now()

	items := platform.FetchAll(ctx, p.platforms, p.logger)
	res, err := p.engine.Run(items, today)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("aggregation run: %w", err)
	}

	status := "ok"
	if res.Degraded {
		status = "degraded"
	}
	metrics.RunsTotal.WithLabelValues(status).Inc()
	metrics.RunDuration.Observe(time.Since(started).Seconds())
	metrics.RankedClusters.Set(float64(res.ClusterCount))

	if p.store != nil {
		if run, err := p.store.SaveRun(ctx, res); err != nil {
			p.logger.Error("archive run failed", zap.Error(err))
		} else {
			p.logger.Info("run archived", zap.String("run_id", run.ID))
		}
	}

	if p.reports != nil {
		if path, err := p.reports.Write(res); err != nil {
			p.logger.Error("report render failed", zap.Error(err))
		} else {
			p.logger.Info("report written", zap.String("path", path))
		}
	}

	if p.notifier != nil && p.notifier.HasNotifiers() && len(res.Items) > 0 {
		n := &notify.Notification{Date: res.Date, Items: res.Items}
		if err := p.notifier.Broadcast(ctx, n); err != nil {
			p.logger.Error("notification failed", zap.Error(err))
		}
	}

	p.logger.Info("cycle complete",
		zap.Int("items", res.ItemCount),
		zap.Int("clusters", res.ClusterCount),
		zap.Bool("degraded", res.Degraded),
		zap.Duration("took", time.Since(started)))
	return res, nil
}

// Scheduler repeats the pipeline on a fixed interval.
type Scheduler struct {
	pipeline *Pipeline
	interval time.Duration
	logger   *zap.Logger
}

// New creates a scheduler around the pipeline.
func New(p *Pipeline, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{pipeline: p, interval: interval, logger: logger}
}

// Run starts the loop. The first cycle runs immediately; the loop
// blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	if _, err := s.pipeline.RunOnce(ctx, time.Now()); err != nil {
		s.logger.Error("initial cycle failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.pipeline.RunOnce(ctx, time.Now()); err != nil {
				s.logger.Error("cycle failed", zap.Error(err))
			}
		}
	}
}
