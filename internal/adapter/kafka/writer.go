// Package kafka publishes aggregated wait-time snapshots to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/lcaslokonon/disney-wait-times/internal/config"
	"github.com/lcaslokonon/disney-wait-times/internal/dataset"
	"github.com/lcaslokonon/disney-wait-times/internal/domain"
)

// Writer produces wait samples to a Kafka topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Store serializes and publishes every sample of the snapshot in a single
// WriteMessages call.
func (w *Writer) Store(ctx context.Context, ds dataset.Dataset) error {
	if len(ds.Samples) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(ds.Samples))
	for i := range ds.Samples {
		msg, err := serializeToMessage(ds.Samples[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a WaitSample into a Kafka message.
func serializeToMessage(sample domain.WaitSample) (kafkago.Message, error) {
	data, err := json.Marshal(sample)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize wait sample: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sampleKey(sample)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "attraction", Value: []byte(sample.AttractionName)},
			{Key: "fetched_at", Value: []byte(sample.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}

// sampleKey keeps all samples of one attraction in one partition while
// staying unique per observation.
func sampleKey(sample domain.WaitSample) string {
	return fmt.Sprintf("%s|%s", sample.AttractionName, sample.ObservedAt.Format(time.RFC3339))
}
