package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/sfc-gh-aneel/streaming-demo/internal/adapters/cache"
	"github.com/sfc-gh-aneel/streaming-demo/internal/adapters/observability"
	"github.com/sfc-gh-aneel/streaming-demo/internal/adapters/warehouse"
	"github.com/sfc-gh-aneel/streaming-demo/internal/app/aggregator"
	"github.com/sfc-gh-aneel/streaming-demo/internal/app/config"
	"github.com/sfc-gh-aneel/streaming-demo/internal/app/dashboard"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

const stopTimeout = 5 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("env file: %v", err)
	}

	cfgPath := flag.String("config", "./data/config.yaml", "Path to configuration file")
	flag.Parse()

	if err := run(*cfgPath); err != nil {
		log.Fatalf("mfgdash: %v", err)
	}
}

func run(cfgPath string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	obs := observability.NewPromObs(logger)
	for _, warn := range cfg.Warnings() {
		obs.LogWarn("config warning", ports.Field{Key: "detail", Value: warn})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Warehouse.ConnString)
	if err != nil {
		return fmt.Errorf("open warehouse: %w", err)
	}
	store := warehouse.NewPostgres(db, cfg.Warehouse.AnalyticsSchema, cfg.Warehouse.AggregationSchema)
	defer store.Close(context.Background())

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("warehouse unreachable: %w", err)
	}

	// Serving without Redis is fine, every request just hits the warehouse.
	var cc ports.Cache = cache.Noop{}
	if cfg.Dashboard.Cache.Addr != "" {
		redis, err := cache.NewRedis(ctx, cfg.Dashboard.Cache.Addr, cfg.Dashboard.Cache.Password, cfg.Dashboard.Cache.DB)
		if err != nil {
			obs.LogWarn("redis unavailable, serving uncached", ports.Field{Key: "error", Value: err.Error()})
		} else {
			cc = redis
			defer redis.Close()
		}
	}

	if *cfg.Aggregation.Enabled {
		sched, err := aggregator.New(store, obs, aggregator.Options{
			SnapshotSchedule: cfg.Aggregation.SnapshotSchedule,
			WindowSchedule:   cfg.Aggregation.WindowSchedule,
			Window:           time.Duration(cfg.Aggregation.WindowHours) * time.Hour,
		})
		if err != nil {
			return fmt.Errorf("aggregation scheduler: %w", err)
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("initial aggregation refresh: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				obs.LogWarn("aggregation scheduler stop", ports.Field{Key: "error", Value: err.Error()})
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	srv, err := dashboard.New(dashboard.Config{
		Addr:         cfg.Dashboard.Addr,
		APIKey:       cfg.Dashboard.APIKey,
		PushInterval: time.Duration(cfg.Dashboard.PushIntervalSeconds) * time.Second,
		SnapshotTTL:  time.Duration(cfg.Dashboard.Cache.SnapshotTTLSeconds) * time.Second,
		QueryTTL:     time.Duration(cfg.Dashboard.Cache.QueryTTLSeconds) * time.Second,
	}, store, cc, obs)
	if err != nil {
		return err
	}

	obs.LogInfo("dashboard listening",
		ports.Field{Key: "addr", Value: cfg.Dashboard.Addr},
		ports.Field{Key: "cache", Value: cfg.Dashboard.Cache.Addr != ""},
		ports.Field{Key: "aggregation", Value: *cfg.Aggregation.Enabled},
	)
	return srv.Run(ctx)
}
