package aggregator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

type mockAgg struct {
	mu        sync.Mutex
	snapshots int
	windows   []time.Duration
	snapErr   error
}

func (m *mockAgg) RefreshSnapshot(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapErr != nil {
		return m.snapErr
	}
	m.snapshots++
	return nil
}

func (m *mockAgg) RefreshWindows(ctx context.Context, window time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = append(m.windows, window)
	return nil
}

func (m *mockAgg) snapshotCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshots
}

func (m *mockAgg) windowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

type mockObs struct {
	mu       sync.Mutex
	errors   []error
	counters map[string]float64
}

func newMockObs() *mockObs {
	return &mockObs{counters: make(map[string]float64)}
}

func (m *mockObs) LogInfo(string, ...ports.Field) {}
func (m *mockObs) LogWarn(string, ...ports.Field) {}

func (m *mockObs) LogError(_ string, err error, _ ...ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

func (m *mockObs) IncCounter(name, category string, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name+"|"+category] += v
}

func (m *mockObs) ObserveLatency(string, string, float64) {}
func (m *mockObs) SetGauge(string, string, float64)       {}

func (m *mockObs) counter(name, category string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name+"|"+category]
}

func validOptions() Options {
	return Options{
		SnapshotSchedule: "@every 1m",
		WindowSchedule:   "@every 5m",
		Window:           24 * time.Hour,
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	obs := newMockObs()

	if _, err := New(nil, obs, validOptions()); err == nil {
		t.Fatal("expected error for nil aggregator")
	}

	opts := validOptions()
	opts.Window = 0
	if _, err := New(&mockAgg{}, obs, opts); err == nil {
		t.Fatal("expected error for zero window")
	}

	opts = validOptions()
	opts.SnapshotSchedule = "every minute or so"
	if _, err := New(&mockAgg{}, obs, opts); err == nil {
		t.Fatal("expected error for invalid snapshot schedule")
	}

	opts = validOptions()
	opts.WindowSchedule = "***"
	if _, err := New(&mockAgg{}, obs, opts); err == nil {
		t.Fatal("expected error for invalid window schedule")
	}
}

func TestRefreshAllHitsBothGroups(t *testing.T) {
	agg := &mockAgg{}
	s, err := New(agg, newMockObs(), validOptions())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if err := s.RefreshAll(context.Background()); err != nil {
		t.Fatalf("refresh all: %v", err)
	}

	if agg.snapshotCount() != 1 {
		t.Fatalf("expected 1 snapshot refresh, got %d", agg.snapshotCount())
	}
	if agg.windowCount() != 1 || agg.windows[0] != 24*time.Hour {
		t.Fatalf("expected one 24h window refresh, got %v", agg.windows)
	}
}

func TestRefreshFailureCountsAndLogs(t *testing.T) {
	agg := &mockAgg{snapErr: errors.New("deadlock detected")}
	obs := newMockObs()
	s, err := New(agg, obs, validOptions())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if err := s.RefreshAll(context.Background()); err == nil {
		t.Fatal("expected refresh all to propagate snapshot failure")
	}

	if got := obs.counter("mfg_refresh_failures_total", groupSnapshot); got != 1 {
		t.Fatalf("expected 1 recorded snapshot failure, got %f", got)
	}
	if len(obs.errors) != 1 {
		t.Fatalf("expected 1 logged error, got %d", len(obs.errors))
	}
	if agg.windowCount() != 0 {
		t.Fatalf("window refresh should not run after snapshot failure, got %d", agg.windowCount())
	}
}

func TestStartRefreshesImmediately(t *testing.T) {
	agg := &mockAgg{}
	opts := validOptions()
	opts.SnapshotSchedule = "@every 1h"
	opts.WindowSchedule = "@every 1h"
	s, err := New(agg, newMockObs(), opts)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop(context.Background())

	if agg.snapshotCount() != 1 || agg.windowCount() != 1 {
		t.Fatalf("expected one immediate refresh per group, got %d/%d", agg.snapshotCount(), agg.windowCount())
	}
}

func TestScheduledRefreshFires(t *testing.T) {
	agg := &mockAgg{}
	opts := validOptions()
	opts.SnapshotSchedule = "@every 10ms"
	opts.WindowSchedule = "@every 1h"
	s, err := New(agg, newMockObs(), opts)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for agg.snapshotCount() < 2 {
		select {
		case <-deadline:
			t.Fatalf("scheduled snapshot refresh never fired, count=%d", agg.snapshotCount())
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
