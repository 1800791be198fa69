package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
	"github.com/segmentio/kafka-go"
)

// AuditPublisher streams batch audit records to a message broker.
type AuditPublisher interface {
	Publish(ctx context.Context, record *product.AuditRecord) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
	topic  string
}

func NewProducer(cfg config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				slog.Error("Failed to deliver audit records", "error", err, "count", len(messages))
			}
		},
	}

	return &Producer{
		writer: writer,
		topic:  cfg.Topic,
	}
}

// Publish writes the record keyed by batch id, so retried deliveries of the
// same batch land on one partition.
func (p *Producer) Publish(ctx context.Context, record *product.AuditRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(record.BatchID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

type TopicConfig struct {
	Name       string
	Partitions int
}

// AuditTopics returns the audit topic with its retry and dead letter topics.
func AuditTopics(cfg config.KafkaConfig) []TopicConfig {
	return []TopicConfig{
		{Name: cfg.Topic, Partitions: cfg.Partitions},
		{Name: cfg.Topic + ".retry", Partitions: cfg.Partitions},
		{Name: cfg.Topic + ".dlq", Partitions: 1},
	}
}

func EnsureTopicsWithConfig(cfg config.KafkaConfig, topics []TopicConfig) error {
	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to kafka: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get controller: %w", err)
	}

	controllerConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to controller: %w", err)
	}
	defer controllerConn.Close()

	topicConfigs := make([]kafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		topicConfigs = append(topicConfigs, kafka.TopicConfig{
			Topic:             topic.Name,
			NumPartitions:     topic.Partitions,
			ReplicationFactor: cfg.ReplicationFactor,
		})
	}

	if err := controllerConn.CreateTopics(topicConfigs...); err != nil {
		if !errors.Is(err, kafka.TopicAlreadyExists) {
			return fmt.Errorf("failed to create topics: %w", err)
		}
		slog.Info("Audit topics already exist")
	}

	topicNames := make([]string, len(topics))
	for i, t := range topics {
		topicNames[i] = t.Name
	}
	slog.Info("Ensured topics exist", "topics", topicNames)
	return nil
}
