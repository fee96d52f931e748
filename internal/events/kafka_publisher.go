package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// KafkaEventPublisher publishes events through a watermill Kafka publisher
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewKafkaEventPublisher(brokers []string, logger *slog.Logger) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return newKafkaEventPublisher(publisher, logger), nil
}

func newKafkaEventPublisher(publisher message.Publisher, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{publisher: publisher, logger: logger}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)

	if err := p.publisher.Publish(event.Topic(), msg); err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.DebugContext(ctx, "Event published",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", event.Topic())
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// LoggingEventPublisher only logs events; used when no broker is configured
type LoggingEventPublisher struct {
	logger *slog.Logger
}

func NewLoggingEventPublisher(logger *slog.Logger) *LoggingEventPublisher {
	return &LoggingEventPublisher{logger: logger}
}

func (p *LoggingEventPublisher) Publish(ctx context.Context, event *Event) error {
	p.logger.InfoContext(ctx, "Event emitted",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

func (p *LoggingEventPublisher) Close() error { return nil }
