// Package dashboard serves the aggregated manufacturing views over a gin
// HTTP API and pushes the realtime snapshot to websocket subscribers. All
// reads go through ports.DashboardStore, optionally memoized in ports.Cache.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Addr         string
	APIKey       string
	PushInterval time.Duration
	SnapshotTTL  time.Duration
	QueryTTL     time.Duration
}

// Server is the dashboard process. Construct with New and call Run once;
// cache and obs must be non-nil (pass a noop cache to disable memoization).
type Server struct {
	cfg    Config
	store  ports.DashboardStore
	cache  ports.Cache
	obs    ports.Observability
	hub    *hub
	engine *gin.Engine
}

func New(cfg Config, store ports.DashboardStore, cache ports.Cache, obs ports.Observability) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("dashboard: store is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("dashboard: cache is required")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("dashboard: listen address is required")
	}
	if cfg.PushInterval <= 0 {
		cfg.PushInterval = 5 * time.Second
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = time.Minute
	}
	if cfg.QueryTTL <= 0 {
		cfg.QueryTTL = 5 * time.Minute
	}

	s := &Server{cfg: cfg, store: store, cache: cache, obs: obs, hub: newHub(obs)}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", apiKeyMiddleware(s.cfg.APIKey), s.handleWS)

	api := r.Group("/api/v1", apiKeyMiddleware(s.cfg.APIKey))
	api.GET("/dashboard", s.cacheMiddleware(s.cfg.SnapshotTTL), s.handleDashboard)
	api.GET("/equipment", s.cacheMiddleware(s.cfg.SnapshotTTL), s.handleEquipment)
	api.GET("/equipment/:id/performance", s.cacheMiddleware(s.cfg.QueryTTL), s.handleEquipmentPerformance)
	api.GET("/production/metrics", s.cacheMiddleware(s.cfg.QueryTTL), s.handleProductionMetrics)
	api.GET("/quality/summary", s.cacheMiddleware(s.cfg.QueryTTL), s.handleQualitySummary)
	api.GET("/maintenance", s.cacheMiddleware(s.cfg.QueryTTL), s.handleMaintenance)
	api.GET("/lines", s.cacheMiddleware(s.cfg.QueryTTL), s.handleLines)
	api.GET("/products", s.cacheMiddleware(s.cfg.QueryTTL), s.handleProducts)

	return r
}

// Handler exposes the routed engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains connections for up to
// shutdownTimeout. The websocket hub and the push loop stop with the server.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.run(hubCtx)
	go s.pushLoop(hubCtx)

	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.obs.LogInfo("dashboard listening", ports.Field{Key: "addr", Value: s.cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// pushLoop broadcasts the latest snapshot to websocket clients every tick.
func (s *Server) pushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := s.store.RealtimeSnapshot(ctx)
			if err != nil {
				s.obs.LogWarn("snapshot push skipped", ports.Field{Key: "error", Value: err.Error()})
				continue
			}
			if snap == nil {
				continue
			}
			s.hub.broadcastJSON(snap)
		}
	}
}
