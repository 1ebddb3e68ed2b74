package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/customs-docflow/internal/config"
)

// TransmissionEventProducer publishes dispatch outcome events so downstream
// systems (reporting, reconciliation) can react without polling the log.
// Publishing is best-effort: dispatch never fails because Kafka is down.
type TransmissionEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new transmission event producer and ensures topic exists
func NewTransmissionEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*TransmissionEventProducer, error) {
	if cfg.TransmissionTopic == "" {
		return nil, fmt.Errorf("kafka transmission topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for transmission event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.TransmissionTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure transmission topic %s exists: %w", cfg.TransmissionTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.TransmissionTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Outcome events are advisory, favor throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.TransmissionTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.TransmissionTopic, "count", len(messages))
			}
		},
	}

	return &TransmissionEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.TransmissionTopic,
	}, nil
}

func (p *TransmissionEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal transmission event value: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish transmission event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish transmission event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published transmission event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *TransmissionEventProducer) Close() error {
	p.logger.Info("Closing transmission event Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close transmission event kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
