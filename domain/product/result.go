package product

import "time"

type ItemResult struct {
	ID           string `json:"id"`
	Succeeded    bool   `json:"succeeded"`
	AffectedRows int64  `json:"affectedRows"`
	Error        string `json:"error,omitempty"`
}

func FailedItem(id string, err error) ItemResult {
	return ItemResult{ID: id, Succeeded: false, Error: err.Error()}
}

type BatchSummary struct {
	BatchID         string       `json:"batchId"`
	Operation       Operation    `json:"operation"`
	TotalRequested  int          `json:"totalRequested"`
	TotalAffected   int          `json:"totalAffected"`
	FailedCount     int          `json:"failedCount"`
	MicroBatchCount int          `json:"microBatchCount"`
	BatchSize       int          `json:"batchSize"`
	Cancelled       bool         `json:"cancelled"`
	PerItemResults  []ItemResult `json:"perItemResults"`
	StartedAt       time.Time    `json:"startedAt"`
	CompletedAt     time.Time    `json:"completedAt"`
}

func (s *BatchSummary) FailedIDs() []string {
	ids := make([]string, 0, s.FailedCount)
	for _, r := range s.PerItemResults {
		if !r.Succeeded {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Aggregator accumulates item results in the order they are added. A target
// counts towards TotalAffected at most once, and only when its row changed.
type Aggregator struct {
	summary *BatchSummary
}

func NewAggregator(batchID string, op Operation, totalRequested, microBatchCount, batchSize int) *Aggregator {
	return &Aggregator{
		summary: &BatchSummary{
			BatchID:         batchID,
			Operation:       op,
			TotalRequested:  totalRequested,
			MicroBatchCount: microBatchCount,
			BatchSize:       batchSize,
			PerItemResults:  make([]ItemResult, 0, totalRequested),
			StartedAt:       time.Now().UTC(),
		},
	}
}

func (a *Aggregator) Add(result ItemResult) {
	a.summary.PerItemResults = append(a.summary.PerItemResults, result)

	switch {
	case !result.Succeeded:
		a.summary.FailedCount++
	case result.AffectedRows > 0:
		a.summary.TotalAffected++
	}
}

// Cancel records every remaining id as failed so the summary still covers
// the full request.
func (a *Aggregator) Cancel(remaining []string, cause error) {
	a.summary.Cancelled = true
	for _, id := range remaining {
		a.Add(FailedItem(id, cause))
	}
}

func (a *Aggregator) Summary() *BatchSummary {
	a.summary.CompletedAt = time.Now().UTC()
	return a.summary
}
