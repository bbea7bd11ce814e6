package domain

import "time"

// EquipmentStatus is the operational state attached to every sensor reading.
type EquipmentStatus string

const (
	StatusRunning     EquipmentStatus = "RUNNING"
	StatusMaintenance EquipmentStatus = "MAINTENANCE"
	StatusError       EquipmentStatus = "ERROR"
	StatusStopped     EquipmentStatus = "STOPPED"
)

// EventType classifies a production event.
type EventType string

const (
	EventProduction         EventType = "PRODUCTION"
	EventChangeover         EventType = "CHANGEOVER"
	EventMaintenance        EventType = "MAINTENANCE"
	EventPlannedMaintenance EventType = "PLANNED_MAINTENANCE"
	EventQualityCheck       EventType = "QUALITY_CHECK"
	EventSetup              EventType = "SETUP"
)

// SensorReading is one multi-metric telemetry record for a piece of
// equipment. Field tags match the warehouse fact columns.
type SensorReading struct {
	Timestamp         time.Time       `json:"timestamp"`
	EquipmentID       string          `json:"equipment_id"`
	SensorType        string          `json:"sensor_type"`
	Temperature       float64         `json:"temperature"`
	Pressure          float64         `json:"pressure"`
	Vibration         float64         `json:"vibration"`
	SpeedRPM          float64         `json:"speed_rpm"`
	PowerConsumption  float64         `json:"power_consumption"`
	EfficiencyPercent float64         `json:"efficiency_percent"`
	Status            EquipmentStatus `json:"status"`
}

// ProductionEvent is one production-cycle record for a piece of equipment.
type ProductionEvent struct {
	Timestamp        time.Time `json:"timestamp"`
	EquipmentID      string    `json:"equipment_id"`
	LineID           string    `json:"line_id"`
	ProductID        string    `json:"product_id"`
	EventType        EventType `json:"event_type"`
	UnitsProduced    int       `json:"units_produced"`
	PlannedUnits     int       `json:"planned_units"`
	CycleTimeSeconds float64   `json:"cycle_time_seconds"`
	DowntimeMinutes  float64   `json:"downtime_minutes"`
	RejectCount      int       `json:"reject_count"`
	OperatorID       string    `json:"operator_id"`
	BatchID          string    `json:"batch_id"`
}

// QualityTestResult is one inspection record. DefectType is nil when the
// measurement falls inside the specification range.
type QualityTestResult struct {
	Timestamp        time.Time `json:"timestamp"`
	EquipmentID      string    `json:"equipment_id"`
	ProductID        string    `json:"product_id"`
	TestType         string    `json:"test_type"`
	MeasurementValue float64   `json:"measurement_value"`
	SpecificationMin float64   `json:"specification_min"`
	SpecificationMax float64   `json:"specification_max"`
	IsWithinSpec     bool      `json:"is_within_spec"`
	DefectType       *string   `json:"defect_type"`
	InspectorID      string    `json:"inspector_id"`
	BatchID          string    `json:"batch_id"`
	SampleSize       int       `json:"sample_size"`
}
