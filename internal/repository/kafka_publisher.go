package repository

import (
	"context"
	"fmt"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/kafka"
)

// MarketDataPublisher forwards accepted market-data payloads to Kafka, one
// topic per data type, keyed by symbol so per-symbol ordering survives
// partitioning when the hash balancer is enabled.
type MarketDataPublisher struct {
	producer    *kafka.Producer
	topicPrefix string
}

// NewMarketDataPublisher creates the publisher. Topics are
// "<prefix>.<dataType>", e.g. "market.data.trade".
func NewMarketDataPublisher(producer *kafka.Producer, topicPrefix string) *MarketDataPublisher {
	if topicPrefix == "" {
		topicPrefix = "market.data"
	}
	return &MarketDataPublisher{producer: producer, topicPrefix: topicPrefix}
}

// Process publishes one payload.
func (p *MarketDataPublisher) Process(ctx context.Context, md *models.MarketData) error {
	topic := p.topicPrefix + "." + string(md.DataType)
	if err := p.producer.Publish(ctx, topic, []byte(md.Symbol), md); err != nil {
		return fmt.Errorf("publish %s to %s: %w", md.Symbol, topic, err)
	}
	return nil
}

// PublishMessage satisfies the log collector's Publisher interface so
// aggregated error logs can ride the same producer.
func (p *MarketDataPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// Close flushes and closes the underlying producer.
func (p *MarketDataPublisher) Close() error {
	return p.producer.Close()
}

var _ drepo.MarketDataSink = (*MarketDataPublisher)(nil)
