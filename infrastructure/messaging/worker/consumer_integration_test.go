//go:build integration

package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
	kafkapkg "github.com/restaurant-hub/product-bulk/infrastructure/messaging/kafka"
	clickhousepkg "github.com/restaurant-hub/product-bulk/infrastructure/persistence/clickhouse"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	clickhousemodule "github.com/testcontainers/testcontainers-go/modules/clickhouse"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
)

type testInfrastructure struct {
	kafkaBroker       string
	kafkaCleanup      func()
	clickhouseCleanup func()
	clickhouseClient  *clickhousepkg.Client
}

func setupTestInfrastructure(t *testing.T) *testInfrastructure {
	ctx := context.Background()
	infra := &testInfrastructure{}

	kafkaContainer, err := kafkamodule.Run(ctx,
		"confluentinc/cp-kafka:7.6.1",
		kafkamodule.WithClusterID("test-cluster"),
	)
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	infra.kafkaBroker = brokers[0]
	infra.kafkaCleanup = func() {
		testcontainers.CleanupContainer(t, kafkaContainer)
	}

	clickhouseContainer, err := clickhousemodule.Run(ctx,
		"clickhouse/clickhouse-server:24.3",
		clickhousemodule.WithUsername("default"),
		clickhousemodule.WithPassword("clickhouse123"),
		clickhousemodule.WithDatabase("test_db"),
	)
	require.NoError(t, err)
	infra.clickhouseCleanup = func() {
		testcontainers.CleanupContainer(t, clickhouseContainer)
	}

	host, err := clickhouseContainer.Host(ctx)
	require.NoError(t, err)

	port, err := clickhouseContainer.MappedPort(ctx, "9000")
	require.NoError(t, err)

	client, err := clickhousepkg.NewClient(config.ClickHouseConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "test_db",
		Username: "default",
		Password: "clickhouse123",
	})
	require.NoError(t, err)
	require.NoError(t, client.InitSchema(ctx))
	infra.clickhouseClient = client

	return infra
}

func (i *testInfrastructure) cleanup() {
	if i.clickhouseClient != nil {
		i.clickhouseClient.Close()
	}
	if i.kafkaCleanup != nil {
		i.kafkaCleanup()
	}
	if i.clickhouseCleanup != nil {
		i.clickhouseCleanup()
	}
}

func TestIntegration_EndToEnd_PublishConsumeStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	infra := setupTestInfrastructure(t)
	defer infra.cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kafkaCfg := config.KafkaConfig{
		Brokers:           []string{infra.kafkaBroker},
		Topic:             "integration-audit",
		ConsumerGroup:     "integration-audit-consumers",
		Partitions:        1,
		ReplicationFactor: 1,
	}
	require.NoError(t, kafkapkg.EnsureTopicsWithConfig(kafkaCfg, kafkapkg.AuditTopics(kafkaCfg)))
	time.Sleep(500 * time.Millisecond)

	producer := kafkapkg.NewProducer(kafkaCfg)
	defer producer.Close()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, producer.Publish(ctx, &product.AuditRecord{
			BatchID:         fmt.Sprintf("e2e-%d", i),
			Operation:       product.OperationDeactivate,
			TotalRequested:  5,
			TotalAffected:   4,
			FailedCount:     1,
			MicroBatchCount: 1,
			FailedIDs:       []string{"p-5"},
			StartedAt:       now,
			CompletedAt:     now,
		}))
	}

	repo := clickhousepkg.NewAuditRepository(infra.clickhouseClient)
	w := NewAuditWorker(kafkaCfg, repo, nil, config.WorkerConfig{
		Count:        1,
		BatchSize:    3,
		BatchTimeout: 500 * time.Millisecond,
	})
	w.Start(ctx)
	defer w.Stop()

	require.Eventually(t, func() bool {
		stats, err := repo.GetStats(ctx, &product.GetStatsQuery{
			From: now.Add(-time.Hour).Unix(),
			To:   now.Add(time.Hour).Unix(),
		})
		return err == nil && stats.Batches == 3 && stats.TotalFailed == 3
	}, 60*time.Second, time.Second)
}
