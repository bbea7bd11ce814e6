package ports

// Category labels every metric series with the record stream it belongs to.
const (
	CategorySensor     = "sensor"
	CategoryProduction = "production"
	CategoryQuality    = "quality"
	CategoryDimension  = "dimension"
	CategoryDashboard  = "dashboard"
)

type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogWarn(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)

	IncCounter(name, category string, v float64)
	ObserveLatency(name, category string, seconds float64)

	SetGauge(name, category string, v float64)
}

type Field struct {
	Key   string
	Value any
}
