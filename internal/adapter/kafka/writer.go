package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/fire-nowcast-engine/internal/config"
	"github.com/couchcryptid/fire-nowcast-engine/internal/domain"
)

// Writer publishes nowcast summaries to the sink topic.
// It implements pipeline.Publisher.
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

// PublishBatch serializes and publishes nowcast summaries in a single
// WriteMessages call. Only the scalar product goes on the wire; the grids
// stay in the store for the HTTP layer.
func (w *Writer) PublishBatch(ctx context.Context, nowcasts []domain.Nowcast) error {
	if len(nowcasts) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(nowcasts))
	for i := range nowcasts {
		msg, err := serializeToMessage(nowcasts[i])
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

// serializeToMessage marshals a nowcast into a Kafka message keyed by fire ID
// so all products for a fire land on one partition, in order.
func serializeToMessage(n domain.Nowcast) (kafkago.Message, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize nowcast: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(n.FireID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "fire_id", Value: []byte(n.FireID)},
			{Key: "generated_at", Value: []byte(n.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
