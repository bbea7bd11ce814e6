package mfgstream

import (
	"github.com/sfc-gh-aneel/streaming-demo/internal/app/config"
	"github.com/sfc-gh-aneel/streaming-demo/internal/sim"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// GenerationConfig controls interval, batch size and seeding.
	GenerationConfig = config.GenerationConfig
	// ManufacturingConfig holds the simulated plant: equipment, lines, products.
	ManufacturingConfig = config.ManufacturingConfig
	EquipmentConfig     = config.EquipmentConfig
	LineConfig          = config.LineConfig
	ProductConfig       = config.ProductConfig
	OperatorConfig      = config.OperatorConfig
	InspectorConfig     = config.InspectorConfig
	// WarehouseConfig points at the analytics postgres.
	WarehouseConfig = config.WarehouseConfig
	// StageConfig points at the optional S3-compatible batch stage.
	StageConfig = config.StageConfig
	// StreamConfig points at the optional AMQP broker.
	StreamConfig = config.StreamConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig     = config.MetricsConfig
	DashboardConfig   = config.DashboardConfig
	CacheConfig       = config.CacheConfig
	AggregationConfig = config.AggregationConfig
)

// Simulator tuning knobs, for callers constructing a Config in code.
type (
	SensorParams      = sim.SensorParams
	ProductionParams  = sim.ProductionParams
	QualityParams     = sim.QualityParams
	QualityTestConfig = sim.QualityTestConfig
)

// LoadConfig loads YAML from disk using the internal config reader, applying
// environment substitution, defaults and validation.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
