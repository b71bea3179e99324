package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/floodwatch-map-service/internal/config"
	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// IntentOpenStation is the intent header value on navigation messages.
const IntentOpenStation = "open_station"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NavigationWriter publishes station navigation intents to a Kafka topic.
// It implements geoselect.Navigator.
type NavigationWriter struct {
	writer messageWriter
	logger *slog.Logger
}

// NewNavigationWriter creates a Kafka producer for the configured navigation topic.
func NewNavigationWriter(cfg *config.Config, logger *slog.Logger) *NavigationWriter {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaNavigationTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &NavigationWriter{writer: w, logger: logger}
}

// OpenStation publishes one intent keyed by the station ref, so intents for
// the same station stay ordered on one partition.
func (w *NavigationWriter) OpenStation(ctx context.Context, intent domain.NavigationIntent) error {
	msg, err := serializeToMessage(intent)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish navigation intent: %w", err)
	}
	w.logger.Debug("navigation intent published", "station_ref", intent.Ref.String())
	return nil
}

func (w *NavigationWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a NavigationIntent into a Kafka message.
func serializeToMessage(intent domain.NavigationIntent) (kafkago.Message, error) {
	data, err := json.Marshal(intent)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize navigation intent: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(intent.Ref.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "intent", Value: []byte(IntentOpenStation)},
			{Key: "intent_id", Value: []byte(intent.ID)},
			{Key: "requested_at", Value: []byte(intent.RequestedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
