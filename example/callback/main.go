package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	mfgstream "github.com/sfc-gh-aneel/streaming-demo"
)

func main() {
	flow, err := mfgstream.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// No warehouse involved: batches go straight to the handlers. Quality
	// results have no handler here and are dropped.
	writer := mfgstream.NewCallbackWriter("printer", mfgstream.Callbacks{
		SensorReadings: func(batch []mfgstream.SensorReading) error {
			fmt.Printf("sensor batch: %d readings, first from %s\n", len(batch), batch[0].EquipmentID)
			return nil
		},
		ProductionEvents: func(batch []mfgstream.ProductionEvent) error {
			fmt.Printf("production batch: %d events\n", len(batch))
			return nil
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := flow.Run(ctx, mfgstream.WithRecordWriter(writer)); err != nil && err != context.Canceled {
		log.Fatalf("generator exited: %v", err)
	}
}
