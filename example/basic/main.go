package main

import (
	"context"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := flow.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("generator exited: %v", err)
	}
}
