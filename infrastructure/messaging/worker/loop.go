package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/restaurant-hub/product-bulk/domain/product"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	retryCountHeader  = "retry_count"
	fetchTimeout      = 100 * time.Millisecond
	shutdownTimeout   = 5 * time.Second
	retryWriteTimeout = 10 * time.Second
	dlqWriteTimeout   = 5 * time.Second
)

var errMissingBatchID = errors.New("audit record has no batch_id")

// AuditArchiver keeps a durable copy of audit records that reached the
// audit store.
type AuditArchiver interface {
	Archive(ctx context.Context, records []*product.AuditRecord) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// batchHandler is the part that differs between the audit and retry workers.
// flush reports whether the batch offsets may be committed.
type batchHandler interface {
	malformed(ctx context.Context, msg kafkago.Message, err error)
	flush(ctx context.Context, workerID int, records []*product.AuditRecord, messages []kafkago.Message) bool
}

// consumerLoop fetches messages, decodes them into audit records and hands
// them to a batchHandler once batchSize is reached or batchTimeout elapses.
type consumerLoop struct {
	name         string
	newReader    func() messageReader
	batchSize    int
	batchTimeout time.Duration
	workerCount  int
	wg           sync.WaitGroup
	stopCh       chan struct{}
	stopOnce     sync.Once
}

func newConsumerLoop(name string, readerConfig kafkago.ReaderConfig, batchSize int, batchTimeout time.Duration, workerCount int) *consumerLoop {
	if batchSize < 1 {
		batchSize = 1
	}
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}

	return &consumerLoop{
		name: name,
		newReader: func() messageReader {
			return kafkago.NewReader(readerConfig)
		},
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		workerCount:  workerCount,
		stopCh:       make(chan struct{}),
	}
}

func (l *consumerLoop) start(ctx context.Context, h batchHandler) {
	for i := 0; i < l.workerCount; i++ {
		l.wg.Add(1)
		go l.run(ctx, i, h)
	}
}

func (l *consumerLoop) stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	l.wg.Wait()
}

func (l *consumerLoop) run(ctx context.Context, workerID int, h batchHandler) {
	defer l.wg.Done()

	reader := l.newReader()
	defer reader.Close()

	slog.Info("Worker started", "worker", l.name, "workerID", workerID)

	records := make([]*product.AuditRecord, 0, l.batchSize)
	messages := make([]kafkago.Message, 0, l.batchSize)
	ticker := time.NewTicker(l.batchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Context cancelled, flushing remaining batch", "worker", l.name, "workerID", workerID)
			l.flushWithNewContext(reader, workerID, h, records, messages)
			return

		case <-l.stopCh:
			slog.Info("Stop signal received, flushing remaining batch", "worker", l.name, "workerID", workerID)
			l.flushWithNewContext(reader, workerID, h, records, messages)
			return

		case <-ticker.C:
			records, messages = l.flush(ctx, reader, workerID, h, records, messages)

		default:
			fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
			msg, err := reader.FetchMessage(fetchCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					slog.Info("Context cancelled during fetch, flushing", "worker", l.name, "workerID", workerID)
					l.flushWithNewContext(reader, workerID, h, records, messages)
					return
				}
				continue
			}

			record, err := decodeRecord(msg)
			if err != nil {
				slog.Warn("Skipped malformed audit record, sending to DLQ",
					"worker", l.name,
					"workerID", workerID,
					"error", err,
					"partition", msg.Partition,
					"offset", msg.Offset,
				)
				h.malformed(ctx, msg, err)
				if err := reader.CommitMessages(ctx, msg); err != nil {
					slog.Error("Offset commit failed", "worker", l.name, "workerID", workerID, "error", err)
				}
				continue
			}

			records = append(records, record)
			messages = append(messages, msg)

			if len(records) >= l.batchSize {
				records, messages = l.flush(ctx, reader, workerID, h, records, messages)
				ticker.Reset(l.batchTimeout)
			}
		}
	}
}

func (l *consumerLoop) flushWithNewContext(reader messageReader, workerID int, h batchHandler, records []*product.AuditRecord, messages []kafkago.Message) {
	if len(records) == 0 {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	l.flush(shutdownCtx, reader, workerID, h, records, messages)
}

func (l *consumerLoop) flush(ctx context.Context, reader messageReader, workerID int, h batchHandler, records []*product.AuditRecord, messages []kafkago.Message) ([]*product.AuditRecord, []kafkago.Message) {
	if len(records) == 0 {
		return records, messages
	}

	slog.Debug("Flushing batch", "worker", l.name, "workerID", workerID, "size", len(records))

	if !h.flush(ctx, workerID, records, messages) {
		return records, messages
	}

	if err := reader.CommitMessages(ctx, messages...); err != nil {
		slog.Error("Offset commit failed", "worker", l.name, "workerID", workerID, "error", err)
	}

	return records[:0], messages[:0]
}

func decodeRecord(msg kafkago.Message) (*product.AuditRecord, error) {
	var record product.AuditRecord
	if err := json.Unmarshal(msg.Value, &record); err != nil {
		return nil, err
	}
	if record.BatchID == "" {
		return nil, errMissingBatchID
	}
	return &record, nil
}

func getRetryCount(msg kafkago.Message) int {
	for _, h := range msg.Headers {
		if h.Key == retryCountHeader {
			count, err := strconv.Atoi(string(h.Value))
			if err != nil {
				slog.Warn("Invalid retry count header, using default", "value", string(h.Value))
				return defaultRetryCount
			}
			return count
		}
	}
	return defaultRetryCount
}

// carryHeaders copies the headers of msg that are not in skip.
func carryHeaders(headers []kafkago.Header, msg kafkago.Message, skip ...string) []kafkago.Header {
next:
	for _, h := range msg.Headers {
		for _, s := range skip {
			if h.Key == s {
				continue next
			}
		}
		headers = append(headers, h)
	}
	return headers
}

func originHeaders(topic string, msg kafkago.Message) []kafkago.Header {
	return []kafkago.Header{
		{Key: "original_topic", Value: []byte(topic)},
		{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
		{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
	}
}

func archive(ctx context.Context, archiver AuditArchiver, workerID int, records []*product.AuditRecord) {
	if archiver == nil {
		return
	}
	if err := archiver.Archive(ctx, records); err != nil {
		slog.Error("Failed to archive audit batch", "workerID", workerID, "count", len(records), "error", err)
	}
}
