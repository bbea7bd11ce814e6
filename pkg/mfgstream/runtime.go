package mfgstream

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sfc-gh-aneel/streaming-demo/internal/adapters/observability"
	"github.com/sfc-gh-aneel/streaming-demo/internal/adapters/stage"
	"github.com/sfc-gh-aneel/streaming-demo/internal/adapters/stream"
	"github.com/sfc-gh-aneel/streaming-demo/internal/adapters/warehouse"
	"github.com/sfc-gh-aneel/streaming-demo/internal/app/generator"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
	"github.com/sfc-gh-aneel/streaming-demo/internal/sim"
)

const shutdownTimeout = 5 * time.Second

// RuntimeOption customizes the dependencies used by GeneratorRuntime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	warehouse ports.Warehouse
	writer    ports.RecordWriter
	obs       ports.Observability
	clock     sim.Clock
	seed      *int64
}

// WithWarehouse injects a caller-managed warehouse in place of the default
// postgres connection. The runtime still closes it on shutdown.
func WithWarehouse(w Warehouse) RuntimeOption {
	return func(o *runtimeOverrides) { o.warehouse = w }
}

// WithRecordWriter replaces the entire default writer stack (warehouse plus
// optional stage and stream) with a single caller-provided writer.
func WithRecordWriter(w RecordWriter) RuntimeOption {
	return func(o *runtimeOverrides) { o.writer = w }
}

// WithObservability plugs in a custom metrics and logging backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) { o.obs = obs }
}

// WithClock fixes the simulation clock so generated records carry
// caller-controlled timestamps.
func WithClock(now func() time.Time) RuntimeOption {
	return func(o *runtimeOverrides) { o.clock = sim.Clock(now) }
}

// WithSeed overrides the random seed from the config, making every record
// stream reproducible.
func WithSeed(seed int64) RuntimeOption {
	return func(o *runtimeOverrides) { o.seed = &seed }
}

// simClock is the swappable clock shared by all three simulators. Backfill
// pins it to historical instants and restores it afterwards.
type simClock struct {
	mu sync.Mutex
	fn sim.Clock
}

func newSimClock(fn sim.Clock) *simClock {
	if fn == nil {
		fn = time.Now
	}
	return &simClock{fn: fn}
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fn()
}

func (c *simClock) pin(ts time.Time) {
	c.set(func() time.Time { return ts })
}

func (c *simClock) set(fn sim.Clock) {
	c.mu.Lock()
	c.fn = fn
	c.mu.Unlock()
}

// GeneratorRuntime wires simulators, generation loops and writers together
// and exposes simple lifecycle hooks for embedding the generator inside any
// Go service.
type GeneratorRuntime struct {
	cfg        *Config
	obs        ports.Observability
	gens       *Generators
	runner     *generator.Runner
	writer     ports.RecordWriter
	warehouse  ports.Warehouse
	stage      *stage.Minio
	amqpConn   *amqp.Connection
	clock      *simClock
	metricsSrv *http.Server
}

// NewRuntime bootstraps the default adapters: postgres warehouse, optional
// minio stage, optional AMQP stream, Prometheus observability. RuntimeOption
// values override any dependency, so tests and embedders can point the
// generator at their own writers and clocks.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*GeneratorRuntime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.obs
	if obs == nil {
		obs = observability.NewPromObs(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	clock := newSimClock(overrides.clock)
	seed := resolveSeed(cfg, overrides.seed)

	rt := &GeneratorRuntime{
		cfg:   cfg,
		obs:   obs,
		gens:  newGenerators(cfg, seed, clock.Now),
		clock: clock,
	}

	writer := overrides.writer
	if writer == nil {
		writers := make([]ports.RecordWriter, 0, 3)

		wh := overrides.warehouse
		if wh == nil {
			db, err := sql.Open("postgres", cfg.Warehouse.ConnString)
			if err != nil {
				return nil, fmt.Errorf("open warehouse: %w", err)
			}
			wh = warehouse.NewPostgres(db, cfg.Warehouse.AnalyticsSchema, cfg.Warehouse.AggregationSchema)
		}
		rt.warehouse = wh
		writers = append(writers, wh)

		if cfg.Stage.Endpoint != "" {
			st, err := stage.NewMinio(cfg.Stage.Endpoint, cfg.Stage.AccessKey, cfg.Stage.SecretKey, cfg.Stage.UseSSL, cfg.Stage.Bucket, cfg.Stage.Prefix)
			if err != nil {
				return nil, fmt.Errorf("stage: %w", err)
			}
			rt.stage = st
			writers = append(writers, st)
		}

		if cfg.Stream.URL != "" {
			conn, err := amqp.Dial(cfg.Stream.URL)
			if err != nil {
				return nil, fmt.Errorf("stream: %w", err)
			}
			pub, err := stream.NewPublisher(conn, cfg.Stream.Exchange, cfg.Stream.RoutingPrefix)
			if err != nil {
				conn.Close()
				return nil, fmt.Errorf("stream: %w", err)
			}
			rt.amqpConn = conn
			writers = append(writers, pub)
		}

		writer = generator.NewFanout(writers...)
	} else if overrides.warehouse != nil {
		rt.warehouse = overrides.warehouse
	}
	rt.writer = writer

	continuous := true
	if cfg.Generation.Continuous != nil {
		continuous = *cfg.Generation.Continuous
	}

	runner, err := generator.New(rt.gens.sources(), writer, obs, generator.Options{
		Interval:   cfg.Generation.Interval(),
		BatchSize:  cfg.Generation.BatchSize,
		Continuous: continuous,
	})
	if err != nil {
		return nil, err
	}
	rt.runner = runner

	return rt, nil
}

// Generators returns the simulators backing this runtime, sharing its clock
// and seed.
func (r *GeneratorRuntime) Generators() *Generators { return r.gens }

// Warehouse returns the warehouse writer when one is wired, for dimension
// seeding before a run. Nil when WithRecordWriter replaced the stack.
func (r *GeneratorRuntime) Warehouse() Warehouse { return r.warehouse }

// Start verifies external destinations and launches the metrics endpoint.
// It returns immediately; call Run to drive the loops.
func (r *GeneratorRuntime) Start(ctx context.Context) error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}

	for _, warn := range r.cfg.Warnings() {
		r.obs.LogWarn("config warning", ports.Field{Key: "detail", Value: warn})
	}

	if r.warehouse != nil {
		if err := r.warehouse.Ping(ctx); err != nil {
			return fmt.Errorf("warehouse: %w", err)
		}
	}
	if r.stage != nil {
		if err := r.stage.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("stage: %w", err)
		}
	}

	r.obs.SetGauge("mfg_equipment_tracked", ports.CategorySensor, float64(len(r.cfg.Manufacturing.Equipment)))
	r.obs.SetGauge("mfg_equipment_tracked", ports.CategoryProduction, float64(len(r.cfg.Manufacturing.ProductionLines)))
	r.obs.SetGauge("mfg_equipment_tracked", ports.CategoryQuality, float64(len(r.cfg.Manufacturing.Products)))

	r.startMetrics()
	return nil
}

// Run starts the runtime, drives the generation loops until ctx is cancelled
// (or one pass completes in one-shot mode), then shuts down gracefully.
func (r *GeneratorRuntime) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	runErr := r.runner.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, r.Shutdown(shutdownCtx))
}

// Backfill generates historical records between start and end by stepping
// the simulation clock, then restores the live clock. Run it before starting
// the loops, never concurrently with them.
func (r *GeneratorRuntime) Backfill(ctx context.Context, start, end time.Time) (int, error) {
	defer r.clock.set(time.Now)
	return r.runner.Backfill(ctx, start, end, r.clock.pin)
}

// Shutdown stops the metrics server and closes every writer. Run calls it
// itself; calling it again is harmless.
func (r *GeneratorRuntime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}
	if r.writer != nil {
		if err := r.writer.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.amqpConn != nil && !r.amqpConn.IsClosed() {
		if err := r.amqpConn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *GeneratorRuntime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{Addr: r.cfg.Metrics.Addr, Handler: mux}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("metrics server exited", err)
		}
	}()
}

// OpenWarehouse dials the configured postgres warehouse without building a
// full runtime, for seeding and script execution. The caller owns the
// returned warehouse and must Close it.
func OpenWarehouse(cfg *Config) (Warehouse, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	db, err := sql.Open("postgres", cfg.Warehouse.ConnString)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	return warehouse.NewPostgres(db, cfg.Warehouse.AnalyticsSchema, cfg.Warehouse.AggregationSchema), nil
}
