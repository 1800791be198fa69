package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/restaurant-hub/product-bulk/application/dto"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type runOptions struct {
	operation   string
	ids         []string
	file        string
	concurrency int
}

type runReport struct {
	Requests     int
	Rejected     int
	Targets      int
	AffectedRows int
	FailedItems  int
	Cancelled    int
	Elapsed      time.Duration
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply a bulk operation to any number of product ids",
		Long: `Splits the ids into requests of at most 100 and sends them to
POST /api/v1/products/bulk, several requests at a time.`,
		Example: `  # Deactivate two products
  bulkctl run --operation deactivate --ids burger,fries

  # Delete every id listed in a file, four requests at a time
  bulkctl run --operation delete --file ids.txt --concurrency 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids := opts.ids
			if opts.file != "" {
				fromFile, err := readIDs(opts.file)
				if err != nil {
					return err
				}
				ids = append(ids, fromFile...)
			}
			if len(ids) == 0 {
				return fmt.Errorf("no product ids given, use --ids or --file")
			}

			report, err := runBulk(cmd.Context(), root.httpClient(), root.baseURL, product.Operation(opts.operation), ids, opts.concurrency)
			if err != nil {
				return err
			}
			printRunReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.operation, "operation", "o", "", "delete, activate or deactivate")
	cmd.Flags().StringSliceVar(&opts.ids, "ids", nil, "comma separated product ids")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "file with one product id per line")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 2, "requests in flight")
	_ = cmd.MarkFlagRequired("operation")

	return cmd
}

// chunkIDs splits ids into consecutive slices of at most size entries.
func chunkIDs(ids []string, size int) [][]string {
	if size < 1 {
		size = product.MaxTargetIDs
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func runBulk(ctx context.Context, client *http.Client, baseURL string, op product.Operation, ids []string, concurrency int) (*runReport, error) {
	if !op.IsValid() {
		return nil, fmt.Errorf("%w: %q", product.ErrUnsupportedOperation, op)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	chunks := chunkIDs(ids, product.MaxTargetIDs)
	report := &runReport{Requests: len(chunks), Targets: len(ids)}
	start := time.Now()

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			resp, err := postBulk(gCtx, client, baseURL, &product.BulkProductCommand{Operation: op, TargetIDs: chunk})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				var rejected *rejectedError
				if errors.As(err, &rejected) && rejected.status < http.StatusInternalServerError {
					report.Rejected++
					return nil
				}
				return err
			}
			report.AffectedRows += resp.AffectedRows
			report.FailedItems += resp.FailedCount
			if resp.Cancelled {
				report.Cancelled++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Elapsed = time.Since(start)
	return report, nil
}

// rejectedError is a 4xx answer from the service. It fails one request but
// not the whole run.
type rejectedError struct {
	status int
	body   dto.ErrorResponse
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("request rejected with status %d: %s", e.status, e.body.Error)
}

func postBulk(ctx context.Context, client *http.Client, baseURL string, cmd *product.BulkProductCommand) (*dto.BulkOperationResponse, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/v1/products/bulk", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bulk request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		rejected := &rejectedError{status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&rejected.body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("bulk request failed: %w", rejected)
		}
		return nil, rejected
	}

	var out dto.BulkOperationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open id file: %w", err)
	}
	defer f.Close()
	return scanIDs(f)
}

// scanIDs reads one id per line, skipping blanks and # comments.
func scanIDs(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read id file: %w", err)
	}
	return ids, nil
}

func printRunReport(cmd *cobra.Command, r *runReport) {
	cmd.Println("=== Bulk Run Results ===")
	cmd.Printf("  Requests:      %d (%d rejected)\n", r.Requests, r.Rejected)
	cmd.Printf("  Targets:       %d\n", r.Targets)
	cmd.Printf("  Affected rows: %d\n", r.AffectedRows)
	cmd.Printf("  Failed items:  %d\n", r.FailedItems)
	if r.Cancelled > 0 {
		cmd.Printf("  Cancelled:     %d\n", r.Cancelled)
	}
	cmd.Printf("  Elapsed:       %v\n", r.Elapsed.Round(time.Millisecond))
}
