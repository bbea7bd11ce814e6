package domain

// Equipment describes one machine on a production line, including the
// physical limits the simulator clamps against.
type Equipment struct {
	ID             string  `json:"equipment_id"`
	Name           string  `json:"equipment_name"`
	Type           string  `json:"equipment_type"`
	Manufacturer   string  `json:"manufacturer"`
	Model          string  `json:"model"`
	LineID         string  `json:"line_id"`
	Location       string  `json:"location"`
	MaxTemperature float64 `json:"max_temperature"`
	MaxPressure    float64 `json:"max_pressure"`
	MaxSpeed       float64 `json:"max_speed"`
}

// ProductionLine groups equipment under one facility and shift pattern.
type ProductionLine struct {
	ID                 string  `json:"line_id"`
	Name               string  `json:"line_name"`
	Facility           string  `json:"facility"`
	ProductType        string  `json:"product_type"`
	TargetCapacityHour float64 `json:"target_capacity_per_hour"`
	ShiftPattern       string  `json:"shift_pattern"`
}

// Product is a manufactured item referenced by production and quality facts.
type Product struct {
	ID                 string  `json:"product_id"`
	Name               string  `json:"product_name"`
	Category           string  `json:"category"`
	UnitOfMeasure      string  `json:"unit_of_measure"`
	StandardCost       float64 `json:"standard_cost"`
	TargetQualityScore float64 `json:"target_quality_score"`
}

// Operator works a fixed shift and is stamped onto production events.
type Operator struct {
	ID    string `json:"operator_id"`
	Name  string `json:"operator_name"`
	Shift Shift  `json:"shift"`
}

// Inspector signs quality test results.
type Inspector struct {
	ID   string `json:"inspector_id"`
	Name string `json:"inspector_name"`
}

// QualityTest is the parameter set for one test type: the acceptable
// measurement band, the rounding precision and the failure probability.
type QualityTest struct {
	Type               string
	SpecMin            float64
	SpecMax            float64
	Precision          float64
	FailureProbability float64
}
