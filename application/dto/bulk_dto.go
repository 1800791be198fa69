package dto

import "github.com/restaurant-hub/product-bulk/domain/product"

type BulkOperationResponse struct {
	Success      bool                 `json:"success"`
	BatchID      string               `json:"batchId"`
	Operation    product.Operation    `json:"operation"`
	AffectedRows int                  `json:"affectedRows"`
	TotalBatches int                  `json:"totalBatches"`
	BatchSize    int                  `json:"batchSize"`
	FailedCount  int                  `json:"failedCount"`
	Cancelled    bool                 `json:"cancelled"`
	Data         []product.ItemResult `json:"data"`
}

func NewBulkOperationResponse(s *product.BatchSummary) *BulkOperationResponse {
	return &BulkOperationResponse{
		Success:      true,
		BatchID:      s.BatchID,
		Operation:    s.Operation,
		AffectedRows: s.TotalAffected,
		TotalBatches: s.MicroBatchCount,
		BatchSize:    s.BatchSize,
		FailedCount:  s.FailedCount,
		Cancelled:    s.Cancelled,
		Data:         s.PerItemResults,
	}
}

type ErrorResponse struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error"`
	Details []product.ErrorDetail `json:"details,omitempty"`
}

type StatsResponse struct {
	Batches        int64          `json:"batches"`
	TotalRequested int64          `json:"total_requested"`
	TotalAffected  int64          `json:"total_affected"`
	TotalFailed    int64          `json:"total_failed"`
	GroupedData    []GroupedStats `json:"grouped_data,omitempty"`
}

type GroupedStats struct {
	Key            string `json:"key"`
	Batches        int64  `json:"batches"`
	TotalRequested int64  `json:"total_requested"`
	TotalAffected  int64  `json:"total_affected"`
	TotalFailed    int64  `json:"total_failed"`
}
