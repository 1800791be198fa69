package clickhouse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/restaurant-hub/product-bulk/domain/product"
)

const maxBatchSize = 50000

type AuditRepository struct {
	conn     driver.Conn
	database string
}

func NewAuditRepository(client *Client) *AuditRepository {
	return &AuditRepository{conn: client.Conn(), database: client.Database()}
}

func (r *AuditRepository) InsertAuditBatch(ctx context.Context, records []*product.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	for start := 0; start < len(records); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(records) {
			end = len(records)
		}

		if err := r.insertChunk(ctx, records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *AuditRepository) insertChunk(ctx context.Context, records []*product.AuditRecord) error {
	batch, err := r.conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s.bulk_operation_audit (
			batch_id, operation, total_requested, total_affected, failed_count,
			micro_batch_count, cancelled, failed_ids, started_at, completed_at
		)
	`, r.database))
	if err != nil {
		slog.Error("Failed to prepare ClickHouse audit batch", "error", err)
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, rec := range records {
		err := batch.Append(
			rec.BatchID,
			string(rec.Operation),
			uint32(rec.TotalRequested),
			uint32(rec.TotalAffected),
			uint32(rec.FailedCount),
			uint32(rec.MicroBatchCount),
			rec.Cancelled,
			rec.GetFailedIDs(),
			rec.StartedAt,
			rec.CompletedAt,
		)
		if err != nil {
			slog.Error("Failed to append audit record to batch", "batchID", rec.BatchID, "error", err)
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		slog.Error("Failed to send audit batch to ClickHouse", "batchSize", len(records), "error", err)
		return fmt.Errorf("failed to send batch: %w", err)
	}

	slog.Info("Audit batch inserted to ClickHouse", "count", len(records))
	return nil
}

// GetStats reads the audit table with FINAL so a batch inserted more than
// once (retry after an accepted insert, archive replay) counts once.
func (r *AuditRepository) GetStats(ctx context.Context, query *product.GetStatsQuery) (*product.StatsResult, error) {
	fromTime := time.Unix(query.From, 0)
	toTime := time.Unix(query.To, 0)

	conditions := []string{"completed_at >= ?", "completed_at <= ?"}
	args := []interface{}{fromTime, toTime}

	if query.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, string(query.Operation))
	}

	whereClause := strings.Join(conditions, " AND ")

	var batches, requested, affected, failed uint64
	baseQuery := fmt.Sprintf(`
		SELECT
			count(),
			sum(total_requested),
			sum(total_affected),
			sum(failed_count)
		FROM %s.bulk_operation_audit FINAL
		WHERE %s
	`, r.database, whereClause)

	row := r.conn.QueryRow(ctx, baseQuery, args...)
	if err := row.Scan(&batches, &requested, &affected, &failed); err != nil {
		slog.Error("Failed to query audit stats from ClickHouse", "operation", query.Operation, "error", err)
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	result := &product.StatsResult{
		Batches:        int64(batches),
		TotalRequested: int64(requested),
		TotalAffected:  int64(affected),
		TotalFailed:    int64(failed),
	}

	if query.GroupBy != "" {
		grouped, err := r.getGroupedStats(ctx, query, whereClause, args)
		if err != nil {
			return nil, err
		}
		result.GroupedData = grouped
	}

	slog.Info("Audit stats queried from ClickHouse", "operation", query.Operation, "batches", batches)
	return result, nil
}

func (r *AuditRepository) getGroupedStats(ctx context.Context, query *product.GetStatsQuery, whereClause string, args []interface{}) ([]product.GroupedStat, error) {
	var groupByColumn string

	switch query.GroupBy {
	case product.GroupByOperation:
		groupByColumn = "operation"
	case product.GroupByHour:
		groupByColumn = "toStartOfHour(completed_at)"
	case product.GroupByDay:
		groupByColumn = "toStartOfDay(completed_at)"
	default:
		return nil, nil
	}

	groupQuery := fmt.Sprintf(`
		SELECT
			toString(%s) AS key,
			count(),
			sum(total_requested),
			sum(total_affected),
			sum(failed_count)
		FROM %s.bulk_operation_audit FINAL
		WHERE %s
		GROUP BY %s
		ORDER BY %s
	`, groupByColumn, r.database, whereClause, groupByColumn, groupByColumn)

	rows, err := r.conn.Query(ctx, groupQuery, args...)
	if err != nil {
		slog.Error("Failed to query grouped audit stats from ClickHouse", "groupBy", query.GroupBy, "error", err)
		return nil, fmt.Errorf("failed to get grouped stats: %w", err)
	}
	defer rows.Close()

	var result []product.GroupedStat
	for rows.Next() {
		var data product.GroupedStat
		var batches, requested, affected, failed uint64
		if err := rows.Scan(&data.Key, &batches, &requested, &affected, &failed); err != nil {
			return nil, fmt.Errorf("failed to scan grouped stats: %w", err)
		}
		data.Batches = int64(batches)
		data.TotalRequested = int64(requested)
		data.TotalAffected = int64(affected)
		data.TotalFailed = int64(failed)
		result = append(result, data)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}
