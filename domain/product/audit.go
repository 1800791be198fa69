package product

import "time"

const (
	GroupByOperation = "operation"
	GroupByHour      = "hour"
	GroupByDay       = "day"
)

var validGroupBy = map[string]bool{GroupByOperation: true, GroupByHour: true, GroupByDay: true}

// AuditRecord is the compact trace of one processed batch that is streamed to
// the audit pipeline. Per-item successes are dropped; failed ids are kept so
// operators can resubmit them.
type AuditRecord struct {
	BatchID         string    `json:"batch_id"`
	Operation       Operation `json:"operation"`
	TotalRequested  int       `json:"total_requested"`
	TotalAffected   int       `json:"total_affected"`
	FailedCount     int       `json:"failed_count"`
	MicroBatchCount int       `json:"micro_batch_count"`
	Cancelled       bool      `json:"cancelled"`
	FailedIDs       []string  `json:"failed_ids"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
}

func NewAuditRecord(s *BatchSummary) *AuditRecord {
	return &AuditRecord{
		BatchID:         s.BatchID,
		Operation:       s.Operation,
		TotalRequested:  s.TotalRequested,
		TotalAffected:   s.TotalAffected,
		FailedCount:     s.FailedCount,
		MicroBatchCount: s.MicroBatchCount,
		Cancelled:       s.Cancelled,
		FailedIDs:       s.FailedIDs(),
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
	}
}

func (r *AuditRecord) GetFailedIDs() []string {
	if r.FailedIDs == nil {
		return []string{}
	}
	return r.FailedIDs
}

type GetStatsQuery struct {
	From      int64     `query:"from"`
	To        int64     `query:"to"`
	Operation Operation `query:"operation"`
	GroupBy   string    `query:"group_by"`
}

func (q *GetStatsQuery) Validate() error {
	validationErr := NewValidationError()

	if q.From == 0 {
		validationErr.Add(ErrorDetail{
			Field:   "from",
			Code:    ErrCodeValidationRequired,
			Message: "from timestamp is required",
		})
	}

	if q.To == 0 {
		validationErr.Add(ErrorDetail{
			Field:   "to",
			Code:    ErrCodeValidationRequired,
			Message: "to timestamp is required",
		})
	}

	if q.From != 0 && q.To != 0 && q.To <= q.From {
		validationErr.Add(ErrorDetail{
			Field:   "to",
			Code:    ErrCodeInvalidRange,
			Message: "to timestamp must be greater than from timestamp",
		})
	}

	if q.Operation != "" && !q.Operation.IsValid() {
		validationErr.Add(ErrorDetail{
			Field:   "operation",
			Code:    ErrCodeInvalidOperation,
			Message: "invalid operation value, must be one of: delete, activate, deactivate",
		})
	}

	if q.GroupBy != "" && !validGroupBy[q.GroupBy] {
		validationErr.Add(ErrorDetail{
			Field:   "group_by",
			Code:    ErrCodeInvalidGroupBy,
			Message: "invalid group_by value, must be one of: operation, hour, day",
		})
	}

	if validationErr.HasErrors() {
		return validationErr
	}

	return nil
}

type StatsResult struct {
	Batches        int64         `json:"batches"`
	TotalRequested int64         `json:"total_requested"`
	TotalAffected  int64         `json:"total_affected"`
	TotalFailed    int64         `json:"total_failed"`
	GroupedData    []GroupedStat `json:"grouped_data,omitempty"`
}

type GroupedStat struct {
	Key            string `json:"key"`
	Batches        int64  `json:"batches"`
	TotalRequested int64  `json:"total_requested"`
	TotalAffected  int64  `json:"total_affected"`
	TotalFailed    int64  `json:"total_failed"`
}
