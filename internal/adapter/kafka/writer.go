package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/impact-simulator/internal/config"
	"github.com/couchcryptid/impact-simulator/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces completed simulation runs to a Kafka topic.
// It implements domain.ResultPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured results topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one completed run and writes it keyed by run ID.
func (w *Writer) Publish(ctx context.Context, record domain.RunRecord) error {
	msg, err := serializeToMessage(record)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write run %s: %w", record.ID, err)
	}
	w.logger.Debug("simulation run published", "run_id", record.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RunRecord into a Kafka message.
func serializeToMessage(record domain.RunRecord) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(record.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "preset", Value: []byte(record.Preset)},
			{Key: "completed_at", Value: []byte(record.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
