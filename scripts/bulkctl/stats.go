package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/restaurant-hub/product-bulk/application/dto"
	"github.com/spf13/cobra"
)

type statsOptions struct {
	since     time.Duration
	operation string
	groupBy   string
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	opts := &statsOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show audited bulk operation statistics",
		Example: `  # Totals for the last day grouped by operation
  bulkctl stats --since 24h --group-by operation`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			to := time.Now()
			from := to.Add(-opts.since)

			stats, err := fetchStats(cmd.Context(), root.httpClient(), root.baseURL, from, to, opts.operation, opts.groupBy)
			if err != nil {
				return err
			}
			printStats(cmd, stats)
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.since, "since", time.Hour, "look-back window")
	cmd.Flags().StringVarP(&opts.operation, "operation", "o", "", "only count this operation")
	cmd.Flags().StringVar(&opts.groupBy, "group-by", "", "operation, hour or day")

	return cmd
}

func fetchStats(ctx context.Context, client *http.Client, baseURL string, from, to time.Time, operation, groupBy string) (*dto.StatsResponse, error) {
	params := url.Values{}
	params.Set("from", strconv.FormatInt(from.Unix(), 10))
	params.Set("to", strconv.FormatInt(to.Unix(), 10))
	if operation != "" {
		params.Set("operation", operation)
	}
	if groupBy != "" {
		params.Set("group_by", groupBy)
	}

	endpoint := strings.TrimRight(baseURL, "/") + "/api/v1/products/bulk/stats?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp dto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, fmt.Errorf("stats request failed with status %d: %s", resp.StatusCode, errResp.Error)
	}

	var stats dto.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &stats, nil
}

func printStats(cmd *cobra.Command, s *dto.StatsResponse) {
	cmd.Printf("Batches: %d  Requested: %d  Affected: %d  Failed: %d\n",
		s.Batches, s.TotalRequested, s.TotalAffected, s.TotalFailed)
	for _, g := range s.GroupedData {
		cmd.Printf("  %-20s batches=%d requested=%d affected=%d failed=%d\n",
			g.Key, g.Batches, g.TotalRequested, g.TotalAffected, g.TotalFailed)
	}
}
