package worker

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	defaultRetryCount = 1
	baseRetryDelay    = 2 * time.Second
	maxRetryDelay     = 60 * time.Second
)

// RetryWorker re-inserts audit batches from the retry topic with exponential
// backoff. Records that exhaust MaxRetryAttempts are moved to the DLQ.
type RetryWorker struct {
	loop             *consumerLoop
	retryWriter      messageWriter
	dlqWriter        messageWriter
	repository       product.AuditRepository
	archiver         AuditArchiver
	maxRetryAttempts int
	baseDelay        time.Duration
	retryTopic       string
	dlqTopic         string
}

func NewRetryWorker(cfg config.KafkaConfig, repository product.AuditRepository, archiver AuditArchiver, workerCfg config.WorkerConfig) *RetryWorker {
	retryTopic := cfg.Topic + ".retry"
	dlqTopic := cfg.Topic + ".dlq"

	readerConfig := kafkago.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.ConsumerGroup + "-retry",
		Topic:          retryTopic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	}

	return &RetryWorker{
		loop:             newConsumerLoop("retry", readerConfig, workerCfg.BatchSize, workerCfg.BatchTimeout, workerCfg.RetryWorkerCount),
		retryWriter:      newWriter(cfg.Brokers, retryTopic),
		dlqWriter:        newWriter(cfg.Brokers, dlqTopic),
		repository:       repository,
		archiver:         archiver,
		maxRetryAttempts: workerCfg.MaxRetryAttempts,
		baseDelay:        baseRetryDelay,
		retryTopic:       retryTopic,
		dlqTopic:         dlqTopic,
	}
}

func (w *RetryWorker) Start(ctx context.Context) {
	slog.Info("Starting retry workers", "count", w.loop.workerCount, "retryTopic", w.retryTopic, "dlqTopic", w.dlqTopic)
	w.loop.start(ctx, w)
}

func (w *RetryWorker) Stop() {
	slog.Info("Stopping retry workers")
	w.loop.stop()

	if err := w.retryWriter.Close(); err != nil {
		slog.Error("Failed to close retry writer", "error", err)
	}

	if err := w.dlqWriter.Close(); err != nil {
		slog.Error("Failed to close DLQ writer", "error", err)
	}

	slog.Info("All retry workers stopped")
}

func (w *RetryWorker) malformed(ctx context.Context, msg kafkago.Message, err error) {
	w.sendBatchToDLQ(ctx, []kafkago.Message{msg}, "unmarshal_error", err.Error())
}

func (w *RetryWorker) flush(ctx context.Context, workerID int, records []*product.AuditRecord, messages []kafkago.Message) bool {
	maxRetryInBatch := 0
	for _, msg := range messages {
		if rc := getRetryCount(msg); rc > maxRetryInBatch {
			maxRetryInBatch = rc
		}
	}

	if maxRetryInBatch > 0 {
		delay := w.calculateBackoff(maxRetryInBatch)
		slog.Debug("Applying retry backoff", "workerID", workerID, "retryCount", maxRetryInBatch, "delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false
		case <-w.loop.stopCh:
			return false
		}
	}

	if err := w.repository.InsertAuditBatch(ctx, records); err != nil {
		slog.Error("Retry batch insert failed",
			"workerID", workerID,
			"error", err,
			"count", len(records),
		)

		var toRetry, toDLQ []kafkago.Message
		for _, msg := range messages {
			if getRetryCount(msg) >= w.maxRetryAttempts {
				toDLQ = append(toDLQ, msg)
			} else {
				toRetry = append(toRetry, msg)
			}
		}

		if len(toRetry) > 0 {
			w.sendBatchToRetry(ctx, toRetry, "insert_failed", err.Error())
		}
		if len(toDLQ) > 0 {
			w.sendBatchToDLQ(ctx, toDLQ, "max_retries_exhausted", err.Error())
		}
		return true
	}

	archive(ctx, w.archiver, workerID, records)
	return true
}

// calculateBackoff doubles the base delay per attempt: 2s, 4s, 8s, capped at 60s.
func (w *RetryWorker) calculateBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	delay := w.baseDelay * time.Duration(1<<uint(retryCount-1))
	if delay > maxRetryDelay || delay <= 0 {
		delay = maxRetryDelay
	}
	return delay
}

func (w *RetryWorker) sendBatchToRetry(ctx context.Context, messages []kafkago.Message, errorType, errorMsg string) {
	retryMessages := make([]kafkago.Message, 0, len(messages))
	lastRetryAt := time.Now().UTC().Format(time.RFC3339)

	for _, msg := range messages {
		headers := []kafkago.Header{
			{Key: retryCountHeader, Value: []byte(strconv.Itoa(getRetryCount(msg) + 1))},
			{Key: "error_type", Value: []byte(errorType)},
			{Key: "error_message", Value: []byte(errorMsg)},
			{Key: "last_retry_at", Value: []byte(lastRetryAt)},
		}

		retryMessages = append(retryMessages, kafkago.Message{
			Key:     msg.Key,
			Value:   msg.Value,
			Headers: carryHeaders(headers, msg, retryCountHeader, "error_type", "error_message", "last_retry_at"),
		})
	}

	writeCtx, cancel := context.WithTimeout(ctx, retryWriteTimeout)
	defer cancel()

	if err := w.retryWriter.WriteMessages(writeCtx, retryMessages...); err != nil {
		slog.Error("Failed to send batch to retry topic", "error", err, "count", len(messages))
	} else {
		slog.Debug("Requeued batch for retry", "count", len(messages))
	}
}

func (w *RetryWorker) sendBatchToDLQ(ctx context.Context, messages []kafkago.Message, errorType, errorMsg string) {
	dlqMessages := make([]kafkago.Message, 0, len(messages))
	sentToDLQAt := time.Now().UTC().Format(time.RFC3339)

	for _, msg := range messages {
		headers := []kafkago.Header{
			{Key: "final_retry_count", Value: []byte(strconv.Itoa(getRetryCount(msg)))},
			{Key: "error_type", Value: []byte(errorType)},
			{Key: "error_message", Value: []byte(errorMsg)},
			{Key: "sent_to_dlq_at", Value: []byte(sentToDLQAt)},
		}

		dlqMessages = append(dlqMessages, kafkago.Message{
			Key:     msg.Key,
			Value:   msg.Value,
			Headers: carryHeaders(headers, msg, retryCountHeader, "error_type", "error_message"),
		})
	}

	writeCtx, cancel := context.WithTimeout(ctx, dlqWriteTimeout)
	defer cancel()

	if err := w.dlqWriter.WriteMessages(writeCtx, dlqMessages...); err != nil {
		slog.Error("Failed to send batch to DLQ", "error", err, "count", len(messages))
	} else {
		slog.Debug("Sent batch to DLQ", "count", len(messages))
	}
}
