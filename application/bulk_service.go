package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/restaurant-hub/product-bulk/application/dto"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/messaging/kafka"
)

type BulkProductService interface {
	Execute(ctx context.Context, cmd *product.BulkProductCommand) (*dto.BulkOperationResponse, error)
}

type bulkProductService struct {
	executor       *product.Executor
	pacer          product.Pacer
	publisher      kafka.AuditPublisher
	microBatchSize int
}

// NewBulkProductService wires the batch processor. publisher may be nil, in
// which case batches are not audited.
func NewBulkProductService(executor *product.Executor, pacer product.Pacer, publisher kafka.AuditPublisher, microBatchSize int) BulkProductService {
	if microBatchSize < 1 {
		microBatchSize = product.DefaultMicroBatchSize
	}
	return &bulkProductService{
		executor:       executor,
		pacer:          pacer,
		publisher:      publisher,
		microBatchSize: microBatchSize,
	}
}

func (s *bulkProductService) Execute(ctx context.Context, cmd *product.BulkProductCommand) (*dto.BulkOperationResponse, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	batches, err := product.Partition(cmd.TargetIDs, s.microBatchSize)
	if err != nil {
		return nil, err
	}

	batchID := uuid.New().String()
	aggregator := product.NewAggregator(batchID, cmd.Operation, len(cmd.TargetIDs), len(batches), s.microBatchSize)

	slog.Info("Bulk operation started",
		"batchID", batchID,
		"operation", cmd.Operation,
		"targets", len(cmd.TargetIDs),
		"microBatches", len(batches))

	s.run(ctx, cmd, batches, aggregator)

	summary := aggregator.Summary()
	s.audit(ctx, summary)

	slog.Info("Bulk operation completed",
		"batchID", batchID,
		"operation", summary.Operation,
		"affected", summary.TotalAffected,
		"failed", summary.FailedCount,
		"cancelled", summary.Cancelled,
		"duration", summary.CompletedAt.Sub(summary.StartedAt))

	return dto.NewBulkOperationResponse(summary), nil
}

// run executes every id serially. The pacer is consulted after each item
// except the last one of the request, and again at each micro-batch
// boundary. A pacer error ends the run and marks the remaining ids failed.
func (s *bulkProductService) run(ctx context.Context, cmd *product.BulkProductCommand, batches [][]string, aggregator *product.Aggregator) {
	total := len(cmd.TargetIDs)
	processed := 0

	for b, batch := range batches {
		for i, id := range batch {
			aggregator.Add(s.executor.Execute(ctx, cmd.Operation, id))
			processed++

			if processed == total {
				return
			}

			err := s.pacer.AfterItem(ctx)
			if err == nil && i == len(batch)-1 && b < len(batches)-1 {
				err = s.pacer.AfterBatch(ctx)
			}
			if err != nil {
				slog.Warn("Bulk operation interrupted",
					"operation", cmd.Operation,
					"processed", processed,
					"remaining", total-processed,
					"error", err)
				aggregator.Cancel(cmd.TargetIDs[processed:], fmt.Errorf("%w: %v", product.ErrBatchCancelled, err))
				return
			}
		}
	}
}

func (s *bulkProductService) audit(ctx context.Context, summary *product.BatchSummary) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(context.WithoutCancel(ctx), product.NewAuditRecord(summary)); err != nil {
		slog.Error("Failed to publish audit record", "batchID", summary.BatchID, "error", err)
	}
}
