package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
	"github.com/restaurant-hub/product-bulk/mocks"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestRecord() *product.AuditRecord {
	now := time.Now().UTC()
	return &product.AuditRecord{
		BatchID:         "batch-123",
		Operation:       product.OperationDeactivate,
		TotalRequested:  3,
		TotalAffected:   2,
		FailedCount:     1,
		MicroBatchCount: 1,
		FailedIDs:       []string{"p-2"},
		StartedAt:       now.Add(-time.Second),
		CompletedAt:     now,
	}
}

func TestNewProducer(t *testing.T) {
	cfg := config.KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "test-audit",
	}

	producer := NewProducer(cfg)

	require.NotNil(t, producer)
	assert.Equal(t, "test-audit", producer.topic)
	require.IsType(t, &kafka.Writer{}, producer.writer)
	assert.Equal(t, "test-audit", producer.writer.(*kafka.Writer).Topic)
}

func TestPublish_KeyedByBatchID(t *testing.T) {
	mockWriter := new(mocks.MockKafkaWriter)
	producer := &Producer{writer: mockWriter, topic: "test-audit"}
	record := createTestRecord()

	mockWriter.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || string(msgs[0].Key) != "batch-123" {
			return false
		}
		var decoded product.AuditRecord
		if err := json.Unmarshal(msgs[0].Value, &decoded); err != nil {
			return false
		}
		return decoded.BatchID == record.BatchID && decoded.FailedCount == 1
	})).Return(nil)

	err := producer.Publish(context.Background(), record)

	require.NoError(t, err)
	mockWriter.AssertExpectations(t)
}

func TestPublish_WriteError(t *testing.T) {
	mockWriter := new(mocks.MockKafkaWriter)
	producer := &Producer{writer: mockWriter, topic: "test-audit"}

	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))

	err := producer.Publish(context.Background(), createTestRecord())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write message")
}

func TestProducerClose(t *testing.T) {
	mockWriter := new(mocks.MockKafkaWriter)
	producer := &Producer{writer: mockWriter, topic: "test-audit"}

	mockWriter.On("Close").Return(nil)

	require.NoError(t, producer.Close())
	mockWriter.AssertExpectations(t)
}

func TestAuditTopics(t *testing.T) {
	cfg := config.KafkaConfig{Topic: "product-bulk-operations", Partitions: 6}

	topics := AuditTopics(cfg)

	require.Len(t, topics, 3)
	assert.Equal(t, TopicConfig{Name: "product-bulk-operations", Partitions: 6}, topics[0])
	assert.Equal(t, TopicConfig{Name: "product-bulk-operations.retry", Partitions: 6}, topics[1])
	assert.Equal(t, TopicConfig{Name: "product-bulk-operations.dlq", Partitions: 1}, topics[2])
}
