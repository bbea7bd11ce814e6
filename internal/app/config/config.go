package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sfc-gh-aneel/streaming-demo/internal/sim"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Generation    GenerationConfig     `yaml:"generation"`
	Manufacturing ManufacturingConfig  `yaml:"manufacturing"`
	Operators     []OperatorConfig     `yaml:"operators"`
	Inspectors    []InspectorConfig    `yaml:"inspectors"`
	SensorData    sim.SensorParams     `yaml:"sensor_data"`
	Production    sim.ProductionParams `yaml:"production_events"`
	Quality       sim.QualityParams    `yaml:"quality_control"`
	Warehouse     WarehouseConfig      `yaml:"warehouse"`
	Stage         StageConfig          `yaml:"stage"`
	Stream        StreamConfig         `yaml:"stream"`
	Metrics       MetricsConfig        `yaml:"metrics"`
	Dashboard     DashboardConfig      `yaml:"dashboard"`
	Aggregation   AggregationConfig    `yaml:"aggregation"`
}

type GenerationConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	BatchSize       int    `yaml:"batch_size"`
	Continuous      *bool  `yaml:"continuous"`
	RandomSeed      *int64 `yaml:"random_seed"`
}

// Interval is the sensor-loop period; production and quality loops run at
// two and three times this period.
func (g GenerationConfig) Interval() time.Duration {
	return time.Duration(g.IntervalSeconds) * time.Second
}

type ManufacturingConfig struct {
	Equipment       []EquipmentConfig `yaml:"equipment"`
	ProductionLines []LineConfig      `yaml:"production_lines"`
	Products        []ProductConfig   `yaml:"products"`
}

type EquipmentConfig struct {
	ID             string  `yaml:"id"`
	Name           string  `yaml:"name"`
	Type           string  `yaml:"type"`
	Manufacturer   string  `yaml:"manufacturer"`
	Model          string  `yaml:"model"`
	LineID         string  `yaml:"line_id"`
	Location       string  `yaml:"location"`
	MaxTemperature float64 `yaml:"max_temperature"`
	MaxPressure    float64 `yaml:"max_pressure"`
	MaxSpeed       float64 `yaml:"max_speed"`
}

type LineConfig struct {
	ID                 string  `yaml:"id"`
	Name               string  `yaml:"name"`
	Facility           string  `yaml:"facility"`
	ProductType        string  `yaml:"product_type"`
	TargetCapacityHour float64 `yaml:"target_capacity_per_hour"`
	ShiftPattern       string  `yaml:"shift_pattern"`
}

type ProductConfig struct {
	ID                 string  `yaml:"id"`
	Name               string  `yaml:"name"`
	Category           string  `yaml:"category"`
	UnitOfMeasure      string  `yaml:"unit_of_measure"`
	StandardCost       float64 `yaml:"standard_cost"`
	TargetQualityScore float64 `yaml:"target_quality_score"`
}

type OperatorConfig struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Shift string `yaml:"shift"`
}

type InspectorConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type WarehouseConfig struct {
	ConnString        string `yaml:"conn_string"`
	AnalyticsSchema   string `yaml:"analytics_schema"`
	AggregationSchema string `yaml:"aggregation_schema"`
}

// StageConfig points at an S3-compatible object store that receives each
// batch as a gzipped NDJSON object. Disabled when Endpoint is empty.
type StageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// StreamConfig points at an AMQP broker that receives each batch as JSON
// messages. Disabled when URL is empty.
type StreamConfig struct {
	URL           string `yaml:"url"`
	Exchange      string `yaml:"exchange"`
	RoutingPrefix string `yaml:"routing_prefix"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type DashboardConfig struct {
	Addr                string      `yaml:"addr"`
	APIKey              string      `yaml:"api_key"`
	PushIntervalSeconds int         `yaml:"push_interval_seconds"`
	Cache               CacheConfig `yaml:"cache"`
}

// CacheConfig points at a redis instance used to memoize dashboard queries.
// Disabled when Addr is empty.
type CacheConfig struct {
	Addr               string `yaml:"addr"`
	Password           string `yaml:"password"`
	DB                 int    `yaml:"db"`
	SnapshotTTLSeconds int    `yaml:"snapshot_ttl_seconds"`
	QueryTTLSeconds    int    `yaml:"query_ttl_seconds"`
}

type AggregationConfig struct {
	Enabled          *bool  `yaml:"enabled"`
	SnapshotSchedule string `yaml:"snapshot_schedule"`
	WindowSchedule   string `yaml:"window_schedule"`
	WindowHours      int    `yaml:"window_hours"`
}

// envPattern matches ${VAR} and ${VAR:default} references in the raw file.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:([^}]*))?\}`)

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandEnv substitutes ${VAR} and ${VAR:default} references. A reference
// without a default for an unset variable fails the load.
func expandEnv(raw []byte) ([]byte, error) {
	var missing []string
	out := envPattern.ReplaceAllFunc(raw, func(m []byte) []byte {
		groups := envPattern.FindSubmatch(m)
		name := string(groups[1])
		if v, ok := os.LookupEnv(name); ok {
			return []byte(v)
		}
		if len(groups[2]) > 0 {
			return groups[3]
		}
		missing = append(missing, name)
		return m
	})
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: unresolved environment variables: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func (c *Config) applyDefaults() {
	if c.Generation.IntervalSeconds == 0 {
		c.Generation.IntervalSeconds = 10
	}
	if c.Generation.BatchSize == 0 {
		c.Generation.BatchSize = 50
	}
	if c.Generation.Continuous == nil {
		t := true
		c.Generation.Continuous = &t
	}

	c.SensorData.ApplyDefaults()
	c.Production.ApplyDefaults()

	if c.Warehouse.AnalyticsSchema == "" {
		c.Warehouse.AnalyticsSchema = "analytics"
	}
	if c.Warehouse.AggregationSchema == "" {
		c.Warehouse.AggregationSchema = "aggregation"
	}
	if c.Stage.Prefix == "" {
		c.Stage.Prefix = "mfg"
	}
	if c.Stream.Exchange == "" {
		c.Stream.Exchange = "mfg.telemetry"
	}
	if c.Stream.RoutingPrefix == "" {
		c.Stream.RoutingPrefix = "mfg"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = ":8090"
	}
	if c.Dashboard.PushIntervalSeconds == 0 {
		c.Dashboard.PushIntervalSeconds = 5
	}
	if c.Dashboard.Cache.SnapshotTTLSeconds == 0 {
		c.Dashboard.Cache.SnapshotTTLSeconds = 60
	}
	if c.Dashboard.Cache.QueryTTLSeconds == 0 {
		c.Dashboard.Cache.QueryTTLSeconds = 300
	}
	if c.Aggregation.Enabled == nil {
		t := true
		c.Aggregation.Enabled = &t
	}
	if c.Aggregation.SnapshotSchedule == "" {
		c.Aggregation.SnapshotSchedule = "@every 1m"
	}
	if c.Aggregation.WindowSchedule == "" {
		c.Aggregation.WindowSchedule = "@every 5m"
	}
	if c.Aggregation.WindowHours == 0 {
		c.Aggregation.WindowHours = 24
	}
}

func (c *Config) validate() error {
	if c.Generation.IntervalSeconds <= 0 {
		return fmt.Errorf("generation.interval_seconds must be positive")
	}
	if c.Generation.BatchSize <= 0 {
		return fmt.Errorf("generation.batch_size must be positive")
	}
	if len(c.Manufacturing.Equipment) == 0 {
		return fmt.Errorf("manufacturing.equipment is required")
	}
	if len(c.Manufacturing.ProductionLines) == 0 {
		return fmt.Errorf("manufacturing.production_lines is required")
	}
	if len(c.Manufacturing.Products) == 0 {
		return fmt.Errorf("manufacturing.products is required")
	}
	if len(c.Operators) == 0 {
		return fmt.Errorf("operators is required")
	}
	if len(c.Inspectors) == 0 {
		return fmt.Errorf("inspectors is required")
	}

	for _, eq := range c.Manufacturing.Equipment {
		if eq.ID == "" {
			return fmt.Errorf("manufacturing.equipment: id is required")
		}
		if eq.MaxTemperature <= 0 || eq.MaxPressure <= 0 || eq.MaxSpeed <= 0 {
			return fmt.Errorf("equipment %s: max_temperature, max_pressure and max_speed must be positive", eq.ID)
		}
	}
	for _, op := range c.Operators {
		switch op.Shift {
		case "DAY_SHIFT", "AFTERNOON_SHIFT", "NIGHT_SHIFT":
		default:
			return fmt.Errorf("operator %s: unknown shift %q", op.ID, op.Shift)
		}
	}

	if err := c.SensorData.Validate(); err != nil {
		return fmt.Errorf("sensor_data: %w", err)
	}
	if err := c.Production.Validate(); err != nil {
		return fmt.Errorf("production_events: %w", err)
	}
	if err := c.Quality.Validate(); err != nil {
		return fmt.Errorf("quality_control: %w", err)
	}

	if c.Warehouse.ConnString == "" {
		return fmt.Errorf("warehouse.conn_string is required")
	}
	if c.Stage.Endpoint != "" {
		if c.Stage.Bucket == "" {
			return fmt.Errorf("stage.bucket is required when stage.endpoint is set")
		}
		if c.Stage.AccessKey == "" || c.Stage.SecretKey == "" {
			return fmt.Errorf("stage.access_key and stage.secret_key are required when stage.endpoint is set")
		}
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	return nil
}
