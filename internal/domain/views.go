package domain

import "time"

// MaintenancePriority ranks how urgently a machine needs attention.
type MaintenancePriority string

const (
	PriorityLow      MaintenancePriority = "LOW"
	PriorityMedium   MaintenancePriority = "MEDIUM"
	PriorityHigh     MaintenancePriority = "HIGH"
	PriorityCritical MaintenancePriority = "CRITICAL"
)

// RealtimeSnapshot is one row of the plant-wide KPI aggregate, appended on
// every refresh and served to the dashboard as the latest state.
type RealtimeSnapshot struct {
	SnapshotTime         time.Time `json:"snapshot_time"`
	ActiveEquipment      int       `json:"active_equipment"`
	RunningCount         int       `json:"running_count"`
	StoppedCount         int       `json:"stopped_count"`
	AlertCount           int       `json:"alert_count"`
	ProductionRateHour   float64   `json:"production_rate_per_hour"`
	UnitsProducedToday   int       `json:"units_produced_today"`
	PlannedUnitsToday    int       `json:"planned_units_today"`
	ProductionEfficiency float64   `json:"production_efficiency_percent"`
	TestsConductedToday  int       `json:"tests_conducted_today"`
	QualityPassRate      float64   `json:"quality_pass_rate_percent"`
	CriticalAlerts       int       `json:"critical_alerts"`
	HighPriorityAlerts   int       `json:"high_priority_alerts"`
	MediumPriorityAlerts int       `json:"medium_priority_alerts"`
}

// EquipmentHealth is the latest per-machine condition joined with its
// maintenance outlook, served by the equipment listing.
type EquipmentHealth struct {
	EquipmentID       string              `json:"equipment_id"`
	Name              string              `json:"equipment_name"`
	Type              string              `json:"equipment_type"`
	LineID            string              `json:"line_id"`
	Status            EquipmentStatus     `json:"status"`
	Temperature       float64             `json:"temperature"`
	Pressure          float64             `json:"pressure"`
	Vibration         float64             `json:"vibration"`
	EfficiencyPercent float64             `json:"efficiency_percent"`
	HealthScore       float64             `json:"health_score"`
	Priority          MaintenancePriority `json:"maintenance_priority"`
	LastReading       time.Time           `json:"last_reading"`
}

// EquipmentPerformanceWindow is one hourly performance bucket for a machine.
type EquipmentPerformanceWindow struct {
	EquipmentID     string    `json:"equipment_id"`
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`
	AvgTemperature  float64   `json:"avg_temperature"`
	AvgPressure     float64   `json:"avg_pressure"`
	AvgVibration    float64   `json:"avg_vibration"`
	AvgSpeedRPM     float64   `json:"avg_speed_rpm"`
	AvgPower        float64   `json:"avg_power_consumption"`
	AvgEfficiency   float64   `json:"avg_efficiency_percent"`
	AvailabilityPct float64   `json:"availability_percent"`
	DowntimeMinutes float64   `json:"downtime_minutes"`
	ReadingCount    int       `json:"reading_count"`
}

// ProductionMetricsWindow is one hourly production bucket for a line.
type ProductionMetricsWindow struct {
	WindowStart     time.Time `json:"window_start"`
	LineID          string    `json:"line_id"`
	UnitsProduced   int       `json:"units_produced"`
	PlannedUnits    int       `json:"planned_units"`
	EfficiencyPct   float64   `json:"production_efficiency_percent"`
	RejectCount     int       `json:"reject_count"`
	RejectRatePct   float64   `json:"reject_rate_percent"`
	AvgCycleSeconds float64   `json:"avg_cycle_time_seconds"`
	DowntimeMinutes float64   `json:"downtime_minutes"`
	EventCount      int       `json:"event_count"`
}

// QualitySummaryWindow is one hourly quality bucket for a product.
type QualitySummaryWindow struct {
	WindowStart    time.Time `json:"window_start"`
	ProductID      string    `json:"product_id"`
	TestsConducted int       `json:"tests_conducted"`
	TestsPassed    int       `json:"tests_passed"`
	TestsFailed    int       `json:"tests_failed"`
	PassRatePct    float64   `json:"pass_rate_percent"`
	DefectCount    int       `json:"defect_count"`
	TopDefect      *string   `json:"top_defect"`
}

// MaintenanceOutlook is the per-machine predictive maintenance snapshot.
type MaintenanceOutlook struct {
	EquipmentID      string              `json:"equipment_id"`
	Name             string              `json:"equipment_name"`
	Type             string              `json:"equipment_type"`
	SnapshotTime     time.Time           `json:"snapshot_time"`
	HealthScore      float64             `json:"health_score"`
	TemperatureAlert bool                `json:"temperature_alert"`
	PressureAlert    bool                `json:"pressure_alert"`
	VibrationAlert   bool                `json:"vibration_alert"`
	EfficiencyAlert  bool                `json:"efficiency_alert"`
	Priority         MaintenancePriority `json:"maintenance_priority"`
	AvgTemperature   float64             `json:"avg_temperature"`
	AvgVibration     float64             `json:"avg_vibration"`
	AvgEfficiency    float64             `json:"avg_efficiency_percent"`
}
