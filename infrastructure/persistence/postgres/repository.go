package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/restaurant-hub/product-bulk/domain/product"
)

// execer is the slice of pgxpool.Pool the repository needs.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type ProductRepository struct {
	db    execer
	table string
}

func NewProductRepository(client *Client) *ProductRepository {
	return &ProductRepository{db: client.Pool(), table: client.Table()}
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pgx.Identifier{r.table}.Sanitize())

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		slog.Error("Failed to delete product", "productID", id, "error", err)
		return 0, fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

// SetFlag skips rows whose flag already equals value, so a no-op update
// reports 0 affected rows.
func (r *ProductRepository) SetFlag(ctx context.Context, id, flag string, value bool) (int64, error) {
	if err := product.ValidateFlagName(flag); err != nil {
		return 0, err
	}

	column := pgx.Identifier{flag}.Sanitize()
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, updated_at = now() WHERE id = $2 AND %s IS DISTINCT FROM $1`,
		pgx.Identifier{r.table}.Sanitize(), column, column)

	tag, err := r.db.Exec(ctx, query, value, id)
	if err != nil {
		slog.Error("Failed to update product flag", "productID", id, "flag", flag, "error", err)
		return 0, fmt.Errorf("failed to set %s on product %s: %w", flag, id, err)
	}
	return tag.RowsAffected(), nil
}
