package mfgstream

import (
	"time"

	base "github.com/sfc-gh-aneel/streaming-demo/pkg/mfgstream"
)

// Type aliases so consumers can import
// github.com/sfc-gh-aneel/streaming-demo directly.
type (
	Config              = base.Config
	GenerationConfig    = base.GenerationConfig
	ManufacturingConfig = base.ManufacturingConfig
	EquipmentConfig     = base.EquipmentConfig
	LineConfig          = base.LineConfig
	ProductConfig       = base.ProductConfig
	OperatorConfig      = base.OperatorConfig
	InspectorConfig     = base.InspectorConfig
	WarehouseConfig     = base.WarehouseConfig
	StageConfig         = base.StageConfig
	StreamConfig        = base.StreamConfig
	MetricsConfig       = base.MetricsConfig
	DashboardConfig     = base.DashboardConfig
	CacheConfig         = base.CacheConfig
	AggregationConfig   = base.AggregationConfig
	SensorParams        = base.SensorParams
	ProductionParams    = base.ProductionParams
	QualityParams       = base.QualityParams
	QualityTestConfig   = base.QualityTestConfig

	Flow             = base.Flow
	FlowOption       = base.FlowOption
	GeneratorRuntime = base.GeneratorRuntime
	RuntimeOption    = base.RuntimeOption
	Generators       = base.Generators

	SensorReading     = base.SensorReading
	ProductionEvent   = base.ProductionEvent
	QualityTestResult = base.QualityTestResult
	EquipmentStatus   = base.EquipmentStatus
	EventType         = base.EventType
	Shift             = base.Shift
	Equipment         = base.Equipment
	ProductionLine    = base.ProductionLine
	Product           = base.Product
	Operator          = base.Operator
	Inspector         = base.Inspector
	QualityTest       = base.QualityTest

	RecordWriter  = base.RecordWriter
	Warehouse     = base.Warehouse
	Observability = base.Observability
	Field         = base.Field
	Callbacks     = base.Callbacks
	Collector     = base.Collector
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

// Generator runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*GeneratorRuntime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithWarehouse(w Warehouse) RuntimeOption {
	return base.WithWarehouse(w)
}

func WithRecordWriter(w RecordWriter) RuntimeOption {
	return base.WithRecordWriter(w)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

func WithClock(now func() time.Time) RuntimeOption {
	return base.WithClock(now)
}

func WithSeed(seed int64) RuntimeOption {
	return base.WithSeed(seed)
}

// Writer adapters.
func NewCallbackWriter(name string, cb Callbacks) RecordWriter {
	return base.NewCallbackWriter(name, cb)
}

func NewCollectorWriter(name string) (RecordWriter, *Collector) {
	return base.NewCollectorWriter(name)
}

// Warehouse access for seeding and scripts.
func OpenWarehouse(cfg *Config) (Warehouse, error) {
	return base.OpenWarehouse(cfg)
}
