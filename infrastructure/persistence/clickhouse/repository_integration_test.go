//go:build integration

package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
)

func setupClickHouseContainer(t *testing.T) (*Client, func()) {
	ctx := context.Background()

	container, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:24.3",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword("clickhouse123"),
		clickhouse.WithDatabase("test_db"),
	)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	client, err := NewClient(config.ClickHouseConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "test_db",
		Username: "default",
		Password: "clickhouse123",
	})
	require.NoError(t, err)

	err = client.InitSchema(ctx)
	require.NoError(t, err)

	cleanup := func() {
		client.Close()
		testcontainers.CleanupContainer(t, container)
	}

	return client, cleanup
}

func seedProducts(t *testing.T, client *Client, ids ...string) {
	ctx := context.Background()
	batch, err := client.Conn().PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s.products (id, name, is_available)", client.Database()))
	require.NoError(t, err)
	for _, id := range ids {
		require.NoError(t, batch.Append(id, "product "+id, true))
	}
	require.NoError(t, batch.Send())
}

func TestIntegration_ProductRepository_SetFlag(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client, cleanup := setupClickHouseContainer(t)
	defer cleanup()

	seedProducts(t, client, "p-1", "p-2")
	repo := NewProductRepository(client)
	ctx := context.Background()

	affected, err := repo.SetFlag(ctx, "p-1", product.DefaultFlagColumn, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.SetFlag(ctx, "p-1", product.DefaultFlagColumn, false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = repo.SetFlag(ctx, "p-2", product.DefaultFlagColumn, true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestIntegration_ProductRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client, cleanup := setupClickHouseContainer(t)
	defer cleanup()

	seedProducts(t, client, "p-1")
	repo := NewProductRepository(client)
	ctx := context.Background()

	affected, err := repo.Delete(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.Delete(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestIntegration_AuditRepository_InsertAndStats(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client, cleanup := setupClickHouseContainer(t)
	defer cleanup()

	repo := NewAuditRepository(client)
	ctx := context.Background()
	now := time.Now().UTC()

	records := []*product.AuditRecord{
		{
			BatchID: "b-1", Operation: product.OperationActivate,
			TotalRequested: 10, TotalAffected: 9, FailedCount: 1, MicroBatchCount: 2,
			FailedIDs: []string{"p-7"}, StartedAt: now.Add(-time.Second), CompletedAt: now,
		},
		{
			BatchID: "b-2", Operation: product.OperationDelete,
			TotalRequested: 3, TotalAffected: 3, MicroBatchCount: 1,
			StartedAt: now.Add(-time.Second), CompletedAt: now,
		},
	}
	require.NoError(t, repo.InsertAuditBatch(ctx, records))

	result, err := repo.GetStats(ctx, &product.GetStatsQuery{
		From:    now.Add(-2 * time.Hour).Unix(),
		To:      now.Add(time.Hour).Unix(),
		GroupBy: product.GroupByOperation,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Batches)
	assert.Equal(t, int64(13), result.TotalRequested)
	assert.Equal(t, int64(12), result.TotalAffected)
	assert.Equal(t, int64(1), result.TotalFailed)
	assert.Len(t, result.GroupedData, 2)
}

func TestIntegration_AuditRepository_RepeatedInsertCountsOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client, cleanup := setupClickHouseContainer(t)
	defer cleanup()

	repo := NewAuditRepository(client)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	record := &product.AuditRecord{
		BatchID: "b-replayed", Operation: product.OperationDeactivate,
		TotalRequested: 5, TotalAffected: 4, FailedCount: 1, MicroBatchCount: 1,
		FailedIDs: []string{"p-3"}, StartedAt: now.Add(-time.Second), CompletedAt: now,
	}

	// Retry after an accepted insert, then an archive replay.
	require.NoError(t, repo.InsertAuditBatch(ctx, []*product.AuditRecord{record}))
	require.NoError(t, repo.InsertAuditBatch(ctx, []*product.AuditRecord{record}))

	result, err := repo.GetStats(ctx, &product.GetStatsQuery{
		From:    now.Add(-time.Hour).Unix(),
		To:      now.Add(time.Hour).Unix(),
		GroupBy: product.GroupByOperation,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Batches)
	assert.Equal(t, int64(5), result.TotalRequested)
	assert.Equal(t, int64(4), result.TotalAffected)
	assert.Equal(t, int64(1), result.TotalFailed)
	require.Len(t, result.GroupedData, 1)
	assert.Equal(t, int64(1), result.GroupedData[0].Batches)
}

func TestIntegration_Client_EnsureFlagColumn(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client, cleanup := setupClickHouseContainer(t)
	defer cleanup()

	ctx := context.Background()
	seedProducts(t, client, "p-1")

	require.NoError(t, client.EnsureFlagColumn(ctx, "is_visible"))
	require.NoError(t, client.EnsureFlagColumn(ctx, "is_visible"))

	repo := NewProductRepository(client)

	affected, err := repo.SetFlag(ctx, "p-1", "is_visible", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.SetFlag(ctx, "p-1", "is_visible", false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}
