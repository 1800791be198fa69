package clickhouse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
)

type Client struct {
	conn     driver.Conn
	database string
}

func NewClient(cfg config.ClickHouseConfig) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      5 * time.Second,
		MaxOpenConns:     20,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to ClickHouse", "addr", addr, "error", err)
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		slog.Error("Failed to ping ClickHouse", "addr", addr, "error", err)
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	slog.Info("Connected to ClickHouse", "addr", addr, "database", cfg.Database)
	return &Client{conn: conn, database: cfg.Database}, nil
}

func (c *Client) Conn() driver.Conn {
	return c.conn
}

func (c *Client) Database() string {
	return c.database
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) InitSchema(ctx context.Context) error {
	queries := []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, c.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.products (
			id String,
			name String,
			is_available Bool DEFAULT true,
			updated_at DateTime64(3) DEFAULT now64(3)
		) ENGINE = MergeTree()
		ORDER BY id`, c.database),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.bulk_operation_audit (
			batch_id String,
			operation LowCardinality(String),
			total_requested UInt32,
			total_affected UInt32,
			failed_count UInt32,
			micro_batch_count UInt32,
			cancelled Bool,
			failed_ids Array(String),
			started_at DateTime64(3),
			completed_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(completed_at)
		PARTITION BY toYYYYMMDD(completed_at)
		ORDER BY (operation, batch_id)`, c.database),
	}

	for i, query := range queries {
		if err := c.conn.Exec(ctx, query); err != nil {
			slog.Error("Failed to execute schema query", "queryIndex", i, "error", err)
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	slog.Info("ClickHouse schema initialized", "database", c.database,
		"tables", []string{"products", "bulk_operation_audit"})
	return nil
}

// EnsureFlagColumn adds the availability column used by bulk activate and
// deactivate to the products table.
func (c *Client) EnsureFlagColumn(ctx context.Context, flag string) error {
	if err := product.ValidateFlagName(flag); err != nil {
		return err
	}

	query := fmt.Sprintf("ALTER TABLE %s.products ADD COLUMN IF NOT EXISTS `%s` Bool DEFAULT true", c.database, flag)
	if err := c.conn.Exec(ctx, query); err != nil {
		slog.Error("Failed to add flag column", "flag", flag, "error", err)
		return fmt.Errorf("failed to add flag column %s: %w", flag, err)
	}

	slog.Info("ClickHouse flag column ready", "database", c.database, "flag", flag)
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}
