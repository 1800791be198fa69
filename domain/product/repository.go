package product

import "context"

// ProductRepository is the single-row mutation surface the bulk processor
// depends on. Each call is atomic per row; nothing spans rows.
type ProductRepository interface {
	Delete(ctx context.Context, id string) (int64, error)
	SetFlag(ctx context.Context, id, flag string, value bool) (int64, error)
}

type AuditRepository interface {
	InsertAuditBatch(ctx context.Context, records []*AuditRecord) error
	GetStats(ctx context.Context, query *GetStatsQuery) (*StatsResult, error)
}
