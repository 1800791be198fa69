package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
)

type Client struct {
	pool  *pgxpool.Pool
	table string
}

func NewClient(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		slog.Error("Failed to connect to Postgres", "host", poolCfg.ConnConfig.Host, "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		slog.Error("Failed to ping Postgres", "host", poolCfg.ConnConfig.Host, "error", err)
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	slog.Info("Connected to Postgres", "host", poolCfg.ConnConfig.Host, "database", poolCfg.ConnConfig.Database)
	return &Client{pool: pool, table: cfg.ProductsTable}, nil
}

func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

func (c *Client) Table() string {
	return c.table
}

func (c *Client) Close() {
	c.pool.Close()
}

func (c *Client) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id text PRIMARY KEY,
		name text NOT NULL DEFAULT '',
		is_available boolean NOT NULL DEFAULT true,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`, pgx.Identifier{c.table}.Sanitize())

	if _, err := c.pool.Exec(ctx, query); err != nil {
		slog.Error("Failed to execute schema query", "table", c.table, "error", err)
		return fmt.Errorf("failed to execute schema query: %w", err)
	}

	slog.Info("Postgres schema initialized", "table", c.table)
	return nil
}

// EnsureFlagColumn adds the availability column used by bulk activate and
// deactivate when it is not the default is_available column.
func (c *Client) EnsureFlagColumn(ctx context.Context, flag string) error {
	return ensureFlagColumn(ctx, c.pool, c.table, flag)
}

func ensureFlagColumn(ctx context.Context, db execer, table, flag string) error {
	if err := product.ValidateFlagName(flag); err != nil {
		return err
	}

	query := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s boolean NOT NULL DEFAULT true`,
		pgx.Identifier{table}.Sanitize(), pgx.Identifier{flag}.Sanitize())

	if _, err := db.Exec(ctx, query); err != nil {
		slog.Error("Failed to add flag column", "table", table, "flag", flag, "error", err)
		return fmt.Errorf("failed to add flag column %s: %w", flag, err)
	}

	slog.Info("Postgres flag column ready", "table", table, "flag", flag)
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}
