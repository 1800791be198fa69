package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

type rootOptions struct {
	baseURL string
	timeout time.Duration
}

func (o *rootOptions) httpClient() *http.Client {
	return &http.Client{
		Timeout: o.timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// newRootCmd builds the bulkctl command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "bulkctl",
		Short:        "Operator tooling for the product bulk service",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.baseURL, "url", defaultBaseURL, "base URL of the product bulk service")
	// A full 100-id batch with default pacing takes roughly 7s.
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "HTTP request timeout")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newArchiveCmd())

	return cmd
}
