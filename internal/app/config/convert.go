package config

import (
	"fmt"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
)

// EquipmentList converts the configured machines into domain records.
func (c *Config) EquipmentList() []domain.Equipment {
	out := make([]domain.Equipment, 0, len(c.Manufacturing.Equipment))
	for _, eq := range c.Manufacturing.Equipment {
		out = append(out, domain.Equipment{
			ID:             eq.ID,
			Name:           eq.Name,
			Type:           eq.Type,
			Manufacturer:   eq.Manufacturer,
			Model:          eq.Model,
			LineID:         eq.LineID,
			Location:       eq.Location,
			MaxTemperature: eq.MaxTemperature,
			MaxPressure:    eq.MaxPressure,
			MaxSpeed:       eq.MaxSpeed,
		})
	}
	return out
}

func (c *Config) ProductionLineList() []domain.ProductionLine {
	out := make([]domain.ProductionLine, 0, len(c.Manufacturing.ProductionLines))
	for _, ln := range c.Manufacturing.ProductionLines {
		out = append(out, domain.ProductionLine{
			ID:                 ln.ID,
			Name:               ln.Name,
			Facility:           ln.Facility,
			ProductType:        ln.ProductType,
			TargetCapacityHour: ln.TargetCapacityHour,
			ShiftPattern:       ln.ShiftPattern,
		})
	}
	return out
}

func (c *Config) ProductList() []domain.Product {
	out := make([]domain.Product, 0, len(c.Manufacturing.Products))
	for _, p := range c.Manufacturing.Products {
		out = append(out, domain.Product{
			ID:                 p.ID,
			Name:               p.Name,
			Category:           p.Category,
			UnitOfMeasure:      p.UnitOfMeasure,
			StandardCost:       p.StandardCost,
			TargetQualityScore: p.TargetQualityScore,
		})
	}
	return out
}

func (c *Config) OperatorList() []domain.Operator {
	out := make([]domain.Operator, 0, len(c.Operators))
	for _, op := range c.Operators {
		out = append(out, domain.Operator{ID: op.ID, Name: op.Name, Shift: domain.Shift(op.Shift)})
	}
	return out
}

func (c *Config) InspectorList() []domain.Inspector {
	out := make([]domain.Inspector, 0, len(c.Inspectors))
	for _, in := range c.Inspectors {
		out = append(out, domain.Inspector{ID: in.ID, Name: in.Name})
	}
	return out
}

func (c *Config) QualityTestList() []domain.QualityTest {
	out := make([]domain.QualityTest, 0, len(c.Quality.Tests))
	for _, t := range c.Quality.Tests {
		out = append(out, domain.QualityTest{
			Type:               t.TestType,
			SpecMin:            t.SpecificationRange[0],
			SpecMax:            t.SpecificationRange[1],
			Precision:          t.Precision,
			FailureProbability: t.FailureProbability,
		})
	}
	return out
}

// Warnings reports reference-data oddities that the simulators paper over at
// runtime: equipment pointing at unknown lines falls back to the first
// configured line, and a shift without operators falls back to the first
// configured operator.
func (c *Config) Warnings() []string {
	var warns []string

	lines := make(map[string]bool, len(c.Manufacturing.ProductionLines))
	for _, ln := range c.Manufacturing.ProductionLines {
		lines[ln.ID] = true
	}
	for _, eq := range c.Manufacturing.Equipment {
		if !lines[eq.LineID] {
			warns = append(warns, fmt.Sprintf("equipment %s references unknown line %q; events will fall back to line %s",
				eq.ID, eq.LineID, c.Manufacturing.ProductionLines[0].ID))
		}
	}

	staffed := make(map[string]bool, len(c.Operators))
	for _, op := range c.Operators {
		staffed[op.Shift] = true
	}
	for _, shift := range []string{"DAY_SHIFT", "AFTERNOON_SHIFT", "NIGHT_SHIFT"} {
		if !staffed[shift] {
			warns = append(warns, fmt.Sprintf("no operators configured for %s; events in that window fall back to operator %s",
				shift, c.Operators[0].ID))
		}
	}
	return warns
}
