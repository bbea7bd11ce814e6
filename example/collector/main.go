package main

import (
	"context"
	"fmt"
	"log"
	"time"

	mfgstream "github.com/sfc-gh-aneel/streaming-demo"
)

func main() {
	cfg, err := mfgstream.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// One pass over every loop, then Run returns on its own.
	oneShot := false
	cfg.Generation.Continuous = &oneShot

	flow, err := mfgstream.ConfFromConfig(cfg)
	if err != nil {
		log.Fatalf("build flow: %v", err)
	}

	writer, collector := mfgstream.NewCollectorWriter("memory")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := flow.Run(ctx, mfgstream.WithRecordWriter(writer), mfgstream.WithSeed(42)); err != nil {
		log.Fatalf("generator exited: %v", err)
	}

	readings := collector.SensorReadings()
	fmt.Printf("collected %d sensor readings, %d production events, %d quality results\n",
		len(readings), len(collector.ProductionEvents()), len(collector.QualityResults()))

	for _, r := range readings[:min(3, len(readings))] {
		fmt.Printf("  %s %s temp=%.1f°C vib=%.2f status=%s\n",
			r.Timestamp.Format(time.RFC3339), r.EquipmentID, r.Temperature, r.Vibration, r.Status)
	}
}
