package clickhouse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/restaurant-hub/product-bulk/domain/product"
)

// ProductRepository mutates products through lightweight deletes and
// synchronous ALTER ... UPDATE mutations. ClickHouse does not report affected
// rows, so each mutation is preceded by a count of the rows it would change.
// The count and the mutation are not atomic.
type ProductRepository struct {
	conn     driver.Conn
	database string
}

func NewProductRepository(client *Client) *ProductRepository {
	return &ProductRepository{conn: client.Conn(), database: client.Database()}
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (int64, error) {
	count, err := r.count(ctx, fmt.Sprintf(`SELECT count() FROM %s.products WHERE id = ?`, r.database), id)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	if err := r.conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s.products WHERE id = ?`, r.database), id); err != nil {
		slog.Error("Failed to delete product from ClickHouse", "productID", id, "error", err)
		return 0, fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return count, nil
}

func (r *ProductRepository) SetFlag(ctx context.Context, id, flag string, value bool) (int64, error) {
	if err := product.ValidateFlagName(flag); err != nil {
		return 0, err
	}

	count, err := r.count(ctx, fmt.Sprintf("SELECT count() FROM %s.products WHERE id = ? AND `%s` != ?", r.database, flag), id, value)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}

	mutationCtx := clickhouse.Context(ctx, clickhouse.WithSettings(clickhouse.Settings{
		"mutations_sync": 1,
	}))
	query := fmt.Sprintf("ALTER TABLE %s.products UPDATE `%s` = ?, updated_at = now64(3) WHERE id = ?", r.database, flag)
	if err := r.conn.Exec(mutationCtx, query, value, id); err != nil {
		slog.Error("Failed to update product flag in ClickHouse", "productID", id, "flag", flag, "error", err)
		return 0, fmt.Errorf("failed to set %s on product %s: %w", flag, id, err)
	}
	return count, nil
}

func (r *ProductRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var count uint64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		slog.Error("Failed to count products in ClickHouse", "error", err)
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return int64(count), nil
}
