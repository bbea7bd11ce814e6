// Package stream fans generated batches out to an AMQP topic exchange for
// consumers that want a live feed instead of warehouse queries. One JSON
// array message per batch, routed as <prefix>.<category>.
package stream

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sfc-gh-aneel/streaming-demo/internal/domain"
	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

type Publisher struct {
	channel  *amqp.Channel
	exchange string
	prefix   string
}

func NewPublisher(conn *amqp.Connection, exchange, routingPrefix string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{channel: ch, exchange: exchange, prefix: routingPrefix}, nil
}

func (p *Publisher) Name() string { return "amqp" }

func (p *Publisher) Close(ctx context.Context) error { return p.channel.Close() }

func (p *Publisher) WriteSensorReadings(ctx context.Context, batch []domain.SensorReading) error {
	return publish(ctx, p, ports.CategorySensor, batch)
}

func (p *Publisher) WriteProductionEvents(ctx context.Context, batch []domain.ProductionEvent) error {
	return publish(ctx, p, ports.CategoryProduction, batch)
}

func (p *Publisher) WriteQualityResults(ctx context.Context, batch []domain.QualityTestResult) error {
	return publish(ctx, p, ports.CategoryQuality, batch)
}

func publish[T any](ctx context.Context, p *Publisher, category string, batch []T) error {
	if len(batch) == 0 {
		return nil
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode %s batch: %w", category, err)
	}

	key := routingKey(p.prefix, category)
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

func routingKey(prefix, category string) string {
	return prefix + "." + category
}

var _ ports.RecordWriter = (*Publisher)(nil)
