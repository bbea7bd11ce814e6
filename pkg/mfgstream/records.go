package mfgstream

import (
	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// SensorReading is one multi-metric telemetry record for a machine.
type SensorReading = domain.SensorReading

// ProductionEvent is one manufacturing event with volumes and downtime.
type ProductionEvent = domain.ProductionEvent

// QualityTestResult is one inspection outcome against a specification band.
type QualityTestResult = domain.QualityTestResult

type (
	EquipmentStatus = domain.EquipmentStatus
	EventType       = domain.EventType
	Shift           = domain.Shift
)

// Reference data stamped onto generated records.
type (
	Equipment      = domain.Equipment
	ProductionLine = domain.ProductionLine
	Product        = domain.Product
	Operator       = domain.Operator
	Inspector      = domain.Inspector
	QualityTest    = domain.QualityTest
)

// RecordWriter consumes generated batches. Custom destinations implement
// this; NewCallbackWriter adapts plain functions.
type RecordWriter = ports.RecordWriter

// Warehouse is the full analytics store surface: fact ingestion plus
// dimension seeding and raw script execution.
type Warehouse = ports.Warehouse

// Observability emits metrics and logs about generation throughput and
// write latency.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field
