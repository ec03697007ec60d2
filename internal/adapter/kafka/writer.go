package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/couchcryptid/population-dashboard/internal/config"
	"github.com/couchcryptid/population-dashboard/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// publishChunk bounds the number of messages handed to one WriteMessages call.
const publishChunk = 500

// Writer publishes normalized observations to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured observation topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the loader in logs.
func (w *Writer) Name() string { return "kafka" }

// Load serializes and publishes every observation, one message each.
func (w *Writer) Load(ctx context.Context, obs []domain.Observation) error {
	for start := 0; start < len(obs); start += publishChunk {
		end := min(start+publishChunk, len(obs))
		msgs := make([]kafkago.Message, 0, end-start)
		for i := start; i < end; i++ {
			msg, err := serializeToMessage(obs[i])
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish observations %d-%d: %w", start, end, err)
		}
		w.logger.Debug("observations published", "topic", w.writer.Topic, "count", len(msgs))
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// MessageKey identifies an observation: location, year, sex, and age range.
func MessageKey(o domain.Observation) string {
	return strings.Join([]string{o.Location, strconv.Itoa(o.Year), string(o.Sex), o.AgeRangeLabel}, "|")
}

// serializeToMessage marshals an Observation into a Kafka message.
func serializeToMessage(o domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(o)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(o.Category.String())},
			{Key: "sex", Value: []byte(o.Sex)},
		},
	}, nil
}
