package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	mfgstream "github.com/sfc-gh-aneel/streaming-demo"
)

// Draws a handful of records straight from the simulators, without a runtime
// or a warehouse. Handy for seeding test fixtures.
func main() {
	flow, err := mfgstream.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	gens, err := flow.Generators()
	if err != nil {
		log.Fatalf("build generators: %v", err)
	}

	fixtures := map[string]any{
		"sensor_readings":   gens.SensorReadings(5),
		"production_events": gens.ProductionEvents(3),
		"quality_tests":     gens.QualityResults(2),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fixtures); err != nil {
		log.Fatalf("encode fixtures: %v", err)
	}
	fmt.Fprintln(os.Stderr, "fixtures written to stdout")
}
