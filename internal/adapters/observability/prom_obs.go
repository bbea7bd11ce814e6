// Package observability bundles structured JSON logging with Prometheus
// metrics behind the ports.Observability interface. Every metric series is
// labeled with the record category it tracks.
package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

type PromObs struct {
	log      *slog.Logger
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
	histos   map[string]*prometheus.HistogramVec
}

// NewPromObs registers the generator's metric families on the default
// registry and returns an observability adapter logging through logger.
func NewPromObs(logger *slog.Logger) *PromObs {
	generated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mfg_records_generated_total",
		Help: "Records synthesized by the simulators.",
	}, []string{"category"})
	written := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mfg_records_written_total",
		Help: "Records accepted by all configured writers.",
	}, []string{"category"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mfg_write_failures_total",
		Help: "Batches dropped after a writer returned an error.",
	}, []string{"category"})
	genLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mfg_generation_seconds",
		Help:    "Time spent synthesizing one batch.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	}, []string{"category"})
	writeLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mfg_write_seconds",
		Help:    "Time from finished batch to write acknowledgement.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"category"})
	refreshLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mfg_refresh_seconds",
		Help:    "Time spent rebuilding one aggregate group.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"category"})
	refreshFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mfg_refresh_failures_total",
		Help: "Aggregate refreshes that returned an error.",
	}, []string{"category"})
	tracked := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mfg_equipment_tracked",
		Help: "Reference rows the generator is currently simulating.",
	}, []string{"category"})
	batchSize := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mfg_last_batch_size",
		Help: "Size of the most recent batch per category.",
	}, []string{"category"})
	clients := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mfg_dashboard_clients",
		Help: "Websocket clients currently subscribed to live pushes.",
	}, []string{"category"})

	prometheus.MustRegister(generated, written, failures, genLatency, writeLatency, refreshLatency, refreshFailures, tracked, batchSize, clients)

	if logger == nil {
		logger = slog.Default()
	}

	return &PromObs{
		log: logger,
		counters: map[string]*prometheus.CounterVec{
			"mfg_records_generated_total": generated,
			"mfg_records_written_total":   written,
			"mfg_write_failures_total":    failures,
			"mfg_refresh_failures_total":  refreshFailures,
		},
		gauges: map[string]*prometheus.GaugeVec{
			"mfg_equipment_tracked": tracked,
			"mfg_last_batch_size":   batchSize,
			"mfg_dashboard_clients": clients,
		},
		histos: map[string]*prometheus.HistogramVec{
			"mfg_generation_seconds": genLatency,
			"mfg_write_seconds":      writeLatency,
			"mfg_refresh_seconds":    refreshLatency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, logArgs(fields)...)
}

func (p *PromObs) LogWarn(msg string, fields ...ports.Field) {
	p.log.Warn(msg, logArgs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	args := logArgs(fields)
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	p.log.Error(msg, args...)
}

func (p *PromObs) IncCounter(name, category string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.WithLabelValues(category).Add(v)
	}
}

func (p *PromObs) ObserveLatency(name, category string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.WithLabelValues(category).Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name, category string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.WithLabelValues(category).Set(v)
	}
}

func logArgs(fields []ports.Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}

var _ ports.Observability = (*PromObs)(nil)
