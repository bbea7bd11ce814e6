// Package aggregator keeps the pre-aggregated dashboard tables fresh. A
// Scheduler runs two cron jobs against a ports.Aggregator: a fast one for the
// realtime snapshot and a slower one for the windowed rollups.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// Refresh groups label the scheduler's metric series.
const (
	groupSnapshot = "snapshot"
	groupWindows  = "windows"
)

type Options struct {
	SnapshotSchedule string
	WindowSchedule   string
	Window           time.Duration
}

// Scheduler owns the refresh cadence. Construct with New, call Start once and
// Stop on shutdown; obs must be non-nil.
type Scheduler struct {
	agg  ports.Aggregator
	obs  ports.Observability
	opts Options
	cron *cron.Cron
}

// New validates both schedules up front so a typo in the config fails the
// process at startup instead of silently never refreshing.
func New(agg ports.Aggregator, obs ports.Observability, opts Options) (*Scheduler, error) {
	if agg == nil {
		return nil, fmt.Errorf("aggregator: store is required")
	}
	if opts.Window <= 0 {
		return nil, fmt.Errorf("aggregator: window must be positive, got %s", opts.Window)
	}

	s := &Scheduler{agg: agg, obs: obs, opts: opts, cron: cron.New()}

	if _, err := s.cron.AddFunc(opts.SnapshotSchedule, func() { s.refreshSnapshot(context.Background()) }); err != nil {
		return nil, fmt.Errorf("aggregator: snapshot schedule %q: %w", opts.SnapshotSchedule, err)
	}
	if _, err := s.cron.AddFunc(opts.WindowSchedule, func() { s.refreshWindows(context.Background()) }); err != nil {
		return nil, fmt.Errorf("aggregator: window schedule %q: %w", opts.WindowSchedule, err)
	}
	return s, nil
}

// Start rebuilds everything once so the dashboard never reads empty tables,
// then hands off to the cron schedules.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.RefreshAll(ctx); err != nil {
		return err
	}
	s.cron.Start()
	s.obs.LogInfo("aggregation schedules active",
		ports.Field{Key: "snapshot", Value: s.opts.SnapshotSchedule},
		ports.Field{Key: "windows", Value: s.opts.WindowSchedule},
		ports.Field{Key: "window", Value: s.opts.Window.String()},
	)
	return nil
}

// Stop halts the schedules and waits for an in-flight refresh to finish,
// giving up when ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	idle := s.cron.Stop()
	select {
	case <-idle.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshAll rebuilds the snapshot and the windowed rollups back to back.
func (s *Scheduler) RefreshAll(ctx context.Context) error {
	if err := s.refreshSnapshot(ctx); err != nil {
		return err
	}
	return s.refreshWindows(ctx)
}

func (s *Scheduler) refreshSnapshot(ctx context.Context) error {
	start := time.Now()
	err := s.agg.RefreshSnapshot(ctx)
	s.observe(groupSnapshot, start, err)
	return err
}

func (s *Scheduler) refreshWindows(ctx context.Context) error {
	start := time.Now()
	err := s.agg.RefreshWindows(ctx, s.opts.Window)
	s.observe(groupWindows, start, err)
	return err
}

func (s *Scheduler) observe(group string, start time.Time, err error) {
	elapsed := time.Since(start)
	s.obs.ObserveLatency("mfg_refresh_seconds", group, elapsed.Seconds())
	if err != nil {
		s.obs.IncCounter("mfg_refresh_failures_total", group, 1)
		s.obs.LogError("aggregate refresh failed", err, ports.Field{Key: "group", Value: group})
		return
	}
	s.obs.LogInfo("aggregates refreshed",
		ports.Field{Key: "group", Value: group},
		ports.Field{Key: "elapsed", Value: elapsed.String()},
	)
}
