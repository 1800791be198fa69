package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
	kafkago "github.com/segmentio/kafka-go"
)

// AuditWorker ingests audit records from the audit topic into the audit
// store. Batches that fail to insert go to the retry topic, undecodable
// messages go straight to the DLQ.
type AuditWorker struct {
	loop        *consumerLoop
	topic       string
	retryWriter messageWriter
	dlqWriter   messageWriter
	repository  product.AuditRepository
	archiver    AuditArchiver
	retryTopic  string
	dlqTopic    string
}

// NewAuditWorker builds the worker. archiver may be nil.
func NewAuditWorker(cfg config.KafkaConfig, repository product.AuditRepository, archiver AuditArchiver, workerCfg config.WorkerConfig) *AuditWorker {
	readerConfig := kafkago.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.ConsumerGroup,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	}

	retryTopic := cfg.Topic + ".retry"
	dlqTopic := cfg.Topic + ".dlq"

	return &AuditWorker{
		loop:        newConsumerLoop("audit", readerConfig, workerCfg.BatchSize, workerCfg.BatchTimeout, workerCfg.Count),
		topic:       cfg.Topic,
		retryWriter: newWriter(cfg.Brokers, retryTopic),
		dlqWriter:   newWriter(cfg.Brokers, dlqTopic),
		repository:  repository,
		archiver:    archiver,
		retryTopic:  retryTopic,
		dlqTopic:    dlqTopic,
	}
}

func newWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
}

func (w *AuditWorker) Start(ctx context.Context) {
	slog.Info("Starting audit workers", "count", w.loop.workerCount, "retryTopic", w.retryTopic, "dlqTopic", w.dlqTopic)
	w.loop.start(ctx, w)
}

func (w *AuditWorker) Stop() {
	slog.Info("Stopping audit workers")
	w.loop.stop()

	if err := w.retryWriter.Close(); err != nil {
		slog.Error("Failed to close retry writer", "error", err)
	}

	if err := w.dlqWriter.Close(); err != nil {
		slog.Error("Failed to close DLQ writer", "error", err)
	}

	slog.Info("All audit workers stopped")
}

func (w *AuditWorker) malformed(ctx context.Context, msg kafkago.Message, err error) {
	w.sendToDLQ(ctx, msg, "unmarshal_error", err.Error())
}

func (w *AuditWorker) flush(ctx context.Context, workerID int, records []*product.AuditRecord, messages []kafkago.Message) bool {
	if err := w.repository.InsertAuditBatch(ctx, records); err != nil {
		slog.Error("Audit batch insert failed, sending to retry topic",
			"workerID", workerID,
			"error", err,
			"count", len(records),
		)
		w.sendBatchToRetry(ctx, messages, "insert_failed", err.Error())
		return true
	}

	archive(ctx, w.archiver, workerID, records)
	return true
}

func (w *AuditWorker) sendBatchToRetry(ctx context.Context, messages []kafkago.Message, errorType, errorMsg string) {
	retryMessages := make([]kafkago.Message, 0, len(messages))
	failedAt := time.Now().UTC().Format(time.RFC3339)

	for _, msg := range messages {
		headers := []kafkago.Header{
			{Key: retryCountHeader, Value: []byte("1")},
			{Key: "error_type", Value: []byte(errorType)},
			{Key: "error_message", Value: []byte(errorMsg)},
			{Key: "failed_at", Value: []byte(failedAt)},
		}
		retryMessages = append(retryMessages, kafkago.Message{
			Key:     msg.Key,
			Value:   msg.Value,
			Headers: append(headers, originHeaders(w.topic, msg)...),
		})
	}

	writeCtx, cancel := context.WithTimeout(ctx, retryWriteTimeout)
	defer cancel()

	if err := w.retryWriter.WriteMessages(writeCtx, retryMessages...); err != nil {
		slog.Error("Failed to send batch to retry topic", "error", err, "count", len(messages))
	} else {
		slog.Debug("Sent batch to retry topic", "count", len(messages))
	}
}

func (w *AuditWorker) sendToDLQ(ctx context.Context, originalMsg kafkago.Message, errorType, errorMsg string) {
	headers := []kafkago.Header{
		{Key: "error_type", Value: []byte(errorType)},
		{Key: "error_message", Value: []byte(errorMsg)},
		{Key: "failed_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
	}
	dlqMessage := kafkago.Message{
		Key:     originalMsg.Key,
		Value:   originalMsg.Value,
		Headers: append(headers, originHeaders(w.topic, originalMsg)...),
	}

	writeCtx, cancel := context.WithTimeout(ctx, dlqWriteTimeout)
	defer cancel()

	if err := w.dlqWriter.WriteMessages(writeCtx, dlqMessage); err != nil {
		slog.Error("Failed to send message to DLQ",
			"error", err,
			"partition", originalMsg.Partition,
			"offset", originalMsg.Offset,
		)
	}
}
