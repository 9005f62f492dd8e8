package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mysticlabs/tiktrend/internal/store"
	"github.com/mysticlabs/tiktrend/pkg/alert"
	"github.com/mysticlabs/tiktrend/pkg/source"
	"github.com/mysticlabs/tiktrend/pkg/trend"
)

// Scheduler periodically re-runs the collect-and-ingest pass. The
// pipeline itself holds no lock, so overlapping passes are prevented
// here: a tick that fires while a pass is still running is skipped.
type Scheduler struct {
	store      store.Store
	collectors []source.Collector
	pipeline   *trend.Pipeline
	alertMgr   *alert.Manager
	interval   time.Duration

	running sync.Mutex // single-flight guard around RunOnce
}

// New creates a new scheduler.
func New(
	s store.Store,
	collectors []source.Collector,
	pipeline *trend.Pipeline,
	alertMgr *alert.Manager,
	interval time.Duration,
) *Scheduler {
	if interval == 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		store:      s,
		collectors: collectors,
		pipeline:   pipeline,
		alertMgr:   alertMgr,
		interval:   interval,
	}
}

// Run starts the scheduler loop. One pass runs immediately, then one per
// interval. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("scheduler started", "interval", s.interval)
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single ingestion pass. If another pass is still in
// flight the call returns immediately without doing work.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if !s.running.TryLock() {
		slog.Warn("ingestion pass still running, skipping tick")
		return
	}
	defer s.running.Unlock()

	records := s.collectAll(ctx)
	if len(records) == 0 {
		slog.Warn("no trends collected, skipping ingestion")
		return
	}

	count := s.pipeline.IngestBatch(ctx, records)
	slog.Info("ingestion pass complete", "collected", len(records), "upserted", count)

	s.alertExploding(ctx)
}

// collectAll gathers records from every collector. A failing collector
// is skipped; the pass proceeds with whatever was collected.
func (s *Scheduler) collectAll(ctx context.Context) []source.TrendRecord {
	var all []source.TrendRecord
	for _, c := range s.collectors {
		records, err := c.Collect(ctx)
		if err != nil {
			slog.Warn("collector failed", "source", c.Name(), "error", err)
			continue
		}
		slog.Info("collected", "source", c.Name(), "records", len(records))
		all = append(all, records...)
	}
	return all
}

// alertExploding notifies once per trend that has reached the Exploding
// stage since its last alert.
func (s *Scheduler) alertExploding(ctx context.Context) {
	if s.alertMgr == nil || !s.alertMgr.HasNotifiers() {
		return
	}

	trends, err := s.store.ListTrends(ctx)
	if err != nil {
		slog.Warn("alert scan failed", "error", err)
		return
	}

	for _, t := range trends {
		if t.Stage != trend.StageExploding || t.Alerted {
			continue
		}

		n := &alert.Notification{
			Name:    t.Name,
			Stage:   t.Stage,
			Score:   t.Score,
			Summary: t.Summary,
			URL:     t.URL,
			Views:   t.Views,
		}
		if err := s.alertMgr.Broadcast(ctx, n); err != nil {
			slog.Warn("alert failed", "name", t.Name, "error", err)
			continue
		}

		if err := s.store.MarkAlerted(ctx, t.Name); err != nil {
			slog.Warn("mark alerted failed", "name", t.Name, "error", err)
		}
		slog.Info("alerted", "name", t.Name, "score", t.Score)
	}
}
