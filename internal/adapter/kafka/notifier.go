// Package kafka publishes build summaries to a Kafka topic so downstream
// consumers (dashboards, alerting) can react to new map artifacts without
// polling the output directory.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/mmcgee/ebird-notable-maps/internal/config"
	"github.com/mmcgee/ebird-notable-maps/internal/pipeline"
)

// Notifier produces one message per published build.
// It implements pipeline.Notifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the configured topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// NotifyBuild serializes and publishes one build summary.
func (n *Notifier) NotifyBuild(ctx context.Context, result pipeline.BuildResult) error {
	msg, err := serializeToMessage(result)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, msg)
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals a build result into a Kafka message keyed by
// artifact name, so rebuilds of the same slot compact onto one key.
func serializeToMessage(result pipeline.BuildResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize build result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(filepath.Base(result.ArtifactPath)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "strategy", Value: []byte(result.Strategy)},
			{Key: "built_at", Value: []byte(result.BuiltAt.Format(time.RFC3339))},
		},
	}, nil
}
