package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/accident-severity/internal/config"
	"github.com/couchcryptid/accident-severity/internal/domain"
	"github.com/couchcryptid/accident-severity/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces prediction events to a Kafka topic.
// It implements form.Publisher.
type Publisher struct {
	writer  messageWriter
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured prediction topic.
func NewPublisher(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, metrics: metrics, logger: logger}
}

// Publish serializes a prediction event and writes it to the topic.
func (p *Publisher) Publish(ctx context.Context, event domain.PredictionEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		p.metrics.PublishErrors.Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.PublishErrors.Inc()
		return fmt.Errorf("publish prediction %s: %w", event.ID, err)
	}
	p.metrics.EventsPublished.Inc()
	p.logger.Debug("prediction event published", "id", event.ID, "severity", event.Severity)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a PredictionEvent into a Kafka message keyed by prediction ID.
func serializeToMessage(event domain.PredictionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(event.Severity)},
			{Key: "predicted_at", Value: []byte(event.PredictedAt.Format(time.RFC3339))},
		},
	}, nil
}
