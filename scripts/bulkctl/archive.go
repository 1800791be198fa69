package main

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/archive/s3"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
	"github.com/restaurant-hub/product-bulk/infrastructure/messaging/kafka"
	"github.com/spf13/cobra"
)

type archiveStore interface {
	List(ctx context.Context, day time.Time) ([]string, error)
	Load(ctx context.Context, key string) ([]*product.AuditRecord, error)
}

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect and replay archived audit records",
		Long: `Reads the NDJSON audit archive in S3. Bucket, prefix and region come from
ARCHIVE_S3_BUCKET, ARCHIVE_S3_PREFIX and AWS_REGION.`,
	}

	cmd.AddCommand(newArchiveListCmd())
	cmd.AddCommand(newArchiveReplayCmd())
	return cmd
}

func newArchiveListCmd() *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List archive objects written on a day",
		Example: `  bulkctl archive list --day 2026-03-14`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := parseDay(day)
			if err != nil {
				return err
			}
			store, err := openArchive(cmd.Context())
			if err != nil {
				return err
			}
			keys, err := store.List(cmd.Context(), t)
			if err != nil {
				return err
			}
			for _, key := range keys {
				cmd.Println(key)
			}
			cmd.Printf("%d object(s)\n", len(keys))
			return nil
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "UTC day as YYYY-MM-DD, defaults to today")
	return cmd
}

func newArchiveReplayCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "replay KEY...",
		Short: "Publish archived audit records back to the audit topic",
		Long: `Re-publishes archived records so the audit worker inserts them again.
The audit table deduplicates on batch id, so replaying is safe.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openArchive(cmd.Context())
			if err != nil {
				return err
			}

			if dryRun {
				return replay(cmd, store, nil, args)
			}

			kafkaCfg := config.KafkaConfig{}
			if err := env.Parse(&kafkaCfg); err != nil {
				return fmt.Errorf("failed to load kafka config: %w", err)
			}
			producer := kafka.NewProducer(kafkaCfg)
			defer producer.Close()

			return replay(cmd, store, producer, args)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only count the records")
	return cmd
}

// replay publishes every record under keys. A nil publisher counts without
// publishing.
func replay(cmd *cobra.Command, store archiveStore, publisher kafka.AuditPublisher, keys []string) error {
	total := 0
	for _, key := range keys {
		records, err := store.Load(cmd.Context(), key)
		if err != nil {
			return err
		}
		for _, record := range records {
			if publisher == nil {
				continue
			}
			if err := publisher.Publish(cmd.Context(), record); err != nil {
				return fmt.Errorf("failed to publish batch %s from %s: %w", record.BatchID, key, err)
			}
		}
		cmd.Printf("%s: %d record(s)\n", key, len(records))
		total += len(records)
	}

	verb := "replayed"
	if publisher == nil {
		verb = "found"
	}
	cmd.Printf("%s %d record(s)\n", verb, total)
	return nil
}

func openArchive(ctx context.Context) (*s3.Archiver, error) {
	cfg := config.ArchiveConfig{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load archive config: %w", err)
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("ARCHIVE_S3_BUCKET is not set")
	}
	return s3.NewArchiver(ctx, cfg)
}

func parseDay(day string) (time.Time, error) {
	if day == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --day %q, expected YYYY-MM-DD", day)
	}
	return t, nil
}
