// Package generator drives the record simulators on staggered schedules and
// fans every finished batch out to the configured writers. Sensor batches are
// emitted every interval, production events at half the rate, quality results
// at a third.
package generator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// drainTimeout bounds how long Run waits for in-flight batches after cancel.
const drainTimeout = 5 * time.Second

// SensorSource yields sensor reading batches. *sim.SensorSimulator satisfies it.
type SensorSource interface {
	GenerateBatch(n int) []domain.SensorReading
}

// ProductionSource yields production event batches.
type ProductionSource interface {
	GenerateBatch(n int) []domain.ProductionEvent
}

// QualitySource yields quality test result batches.
type QualitySource interface {
	GenerateBatch(n int) []domain.QualityTestResult
}

// Sources bundles the three simulators feeding a Runner.
type Sources struct {
	Sensor     SensorSource
	Production ProductionSource
	Quality    QualitySource
}

type Options struct {
	Interval   time.Duration
	BatchSize  int
	Continuous bool
}

// Runner owns the generation loops. The writer is shared across loops and
// must be safe for concurrent use; obs must be non-nil.
type Runner struct {
	src    Sources
	writer ports.RecordWriter
	obs    ports.Observability
	opts   Options

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

func New(src Sources, writer ports.RecordWriter, obs ports.Observability, opts Options) (*Runner, error) {
	if src.Sensor == nil || src.Production == nil || src.Quality == nil {
		return nil, fmt.Errorf("generator: sensor, production and quality sources are all required")
	}
	if writer == nil {
		return nil, fmt.Errorf("generator: writer is required")
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("generator: interval must be positive, got %s", opts.Interval)
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("generator: batch size must be positive, got %d", opts.BatchSize)
	}
	return &Runner{src: src, writer: writer, obs: obs, opts: opts}, nil
}

// Run starts the three loops and blocks until they stop: after one pass per
// loop in one-shot mode, or after ctx is cancelled and in-flight batches
// drain. A loop stuck in a writer is abandoned once drainTimeout elapses.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("generator: already running")
	}
	r.started = true
	r.mu.Unlock()

	r.obs.LogInfo("generator starting",
		ports.Field{Key: "interval", Value: r.opts.Interval.String()},
		ports.Field{Key: "batch_size", Value: r.opts.BatchSize},
		ports.Field{Key: "continuous", Value: r.opts.Continuous},
	)

	r.wg.Add(3)
	go r.loop(ctx, ports.CategorySensor, r.opts.Interval, func(ctx context.Context) error {
		return emit(ctx, r, ports.CategorySensor, r.opts.BatchSize, r.src.Sensor.GenerateBatch, r.writer.WriteSensorReadings)
	})
	go r.loop(ctx, ports.CategoryProduction, 2*r.opts.Interval, func(ctx context.Context) error {
		return emit(ctx, r, ports.CategoryProduction, derivedBatch(r.opts.BatchSize, 2), r.src.Production.GenerateBatch, r.writer.WriteProductionEvents)
	})
	go r.loop(ctx, ports.CategoryQuality, 3*r.opts.Interval, func(ctx context.Context) error {
		return emit(ctx, r, ports.CategoryQuality, derivedBatch(r.opts.BatchSize, 3), r.src.Quality.GenerateBatch, r.writer.WriteQualityResults)
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.obs.LogInfo("generator finished")
		return nil
	case <-ctx.Done():
	}

	select {
	case <-done:
		r.obs.LogInfo("generator drained")
		return nil
	case <-time.After(drainTimeout):
		r.obs.LogWarn("generator drain timed out")
		return fmt.Errorf("generator: drain timed out after %s", drainTimeout)
	}
}

// Backfill replays the generation schedule across a historical window:
// setNow is stepped from start to end in interval increments, emitting a
// sensor batch every step, production every second step and quality every
// third, so backfilled facts land with the same cadence live runs produce.
// Returns the number of steps emitted.
func (r *Runner) Backfill(ctx context.Context, start, end time.Time, setNow func(time.Time)) (int, error) {
	if !start.Before(end) {
		return 0, fmt.Errorf("generator: backfill start %s is not before end %s", start, end)
	}
	if setNow == nil {
		return 0, fmt.Errorf("generator: backfill needs a clock setter")
	}

	steps := 0
	for ts := start; ts.Before(end); ts = ts.Add(r.opts.Interval) {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		setNow(ts)

		if err := emit(ctx, r, ports.CategorySensor, r.opts.BatchSize, r.src.Sensor.GenerateBatch, r.writer.WriteSensorReadings); err != nil {
			r.obs.LogError("batch dropped", err, ports.Field{Key: "category", Value: ports.CategorySensor})
		}
		if steps%2 == 0 {
			if err := emit(ctx, r, ports.CategoryProduction, derivedBatch(r.opts.BatchSize, 2), r.src.Production.GenerateBatch, r.writer.WriteProductionEvents); err != nil {
				r.obs.LogError("batch dropped", err, ports.Field{Key: "category", Value: ports.CategoryProduction})
			}
		}
		if steps%3 == 0 {
			if err := emit(ctx, r, ports.CategoryQuality, derivedBatch(r.opts.BatchSize, 3), r.src.Quality.GenerateBatch, r.writer.WriteQualityResults); err != nil {
				r.obs.LogError("batch dropped", err, ports.Field{Key: "category", Value: ports.CategoryQuality})
			}
		}
		steps++
	}

	r.obs.LogInfo("backfill complete",
		ports.Field{Key: "steps", Value: steps},
		ports.Field{Key: "from", Value: start},
		ports.Field{Key: "to", Value: end},
	)
	return steps, nil
}

func (r *Runner) loop(ctx context.Context, category string, every time.Duration, step func(context.Context) error) {
	defer r.wg.Done()

	for {
		start := time.Now()
		if err := step(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.obs.LogError("batch dropped", err, ports.Field{Key: "category", Value: category})
		}

		if !r.opts.Continuous {
			return
		}

		// Sleep only the remainder so slow writes do not stretch the period.
		wait := every - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func emit[T any](ctx context.Context, r *Runner, category string, n int, generate func(int) []T, write func(context.Context, []T) error) error {
	start := time.Now()
	batch := generate(n)
	r.obs.ObserveLatency("mfg_generation_seconds", category, time.Since(start).Seconds())
	r.obs.IncCounter("mfg_records_generated_total", category, float64(len(batch)))
	r.obs.SetGauge("mfg_last_batch_size", category, float64(len(batch)))

	start = time.Now()
	if err := write(ctx, batch); err != nil {
		r.obs.IncCounter("mfg_write_failures_total", category, 1)
		return fmt.Errorf("write %s batch: %w", category, err)
	}
	r.obs.ObserveLatency("mfg_write_seconds", category, time.Since(start).Seconds())
	r.obs.IncCounter("mfg_records_written_total", category, float64(len(batch)))
	return nil
}

// derivedBatch floors at 1 so the slower categories still emit on every tick.
func derivedBatch(base, divisor int) int {
	n := base / divisor
	if n < 1 {
		n = 1
	}
	return n
}
