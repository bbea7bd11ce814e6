package stream

import (
	"context"
	"testing"
)

func TestRoutingKeys(t *testing.T) {
	cases := []struct {
		category string
		want     string
	}{
		{"sensor", "mfg.sensor"},
		{"production", "mfg.production"},
		{"quality", "mfg.quality"},
	}
	for _, tc := range cases {
		if got := routingKey("mfg", tc.category); got != tc.want {
			t.Fatalf("routingKey(mfg, %s) = %s, want %s", tc.category, got, tc.want)
		}
	}
}

func TestEmptyBatchSkipsPublish(t *testing.T) {
	// No channel configured: a non-empty batch would panic, an empty one
	// must return before touching the broker.
	p := &Publisher{exchange: "mfg.telemetry", prefix: "mfg"}

	if err := p.WriteSensorReadings(context.Background(), nil); err != nil {
		t.Fatalf("empty sensor batch: %v", err)
	}
	if err := p.WriteProductionEvents(context.Background(), nil); err != nil {
		t.Fatalf("empty production batch: %v", err)
	}
	if err := p.WriteQualityResults(context.Background(), nil); err != nil {
		t.Fatalf("empty quality batch: %v", err)
	}
}

func TestPublisherName(t *testing.T) {
	p := &Publisher{}
	if p.Name() != "amqp" {
		t.Fatalf("expected writer name amqp, got %s", p.Name())
	}
}
