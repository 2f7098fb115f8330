// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const statusTimeout = 2 * time.Second

// ProcessStatus holds the probe results for a running server.
type ProcessStatus struct {
	Component string `json:"component"`
	Addr      string `json:"addr"`
	Running   bool   `json:"running"`
	Ready     bool   `json:"ready"`
	Health    string `json:"health,omitempty"`
	Error     string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// newStatusCmd creates the status subcommand.
func newStatusCmd(root *rootOptions) *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show status of a running SolHub server",
		Long: `Query the liveness and readiness probes of the server listening on
metrics.addr and report whether it is running and ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runStatus(cmd, cfg, conf.Metrics.Addr)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().String("metrics-addr", "", "metrics/health address to query (default: metrics.addr)")

	return cmd
}

// runStatus executes the status command.
func runStatus(cmd *cobra.Command, cfg *statusConfig, addr string) error {
	if addr == "" {
		return oops.Code("CONFIG_INVALID").With("key", "metrics.addr").
			Errorf("metrics.addr is empty; the server exposes no probes")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	status := queryProcessStatus(ctx, &http.Client{Timeout: statusTimeout}, addr)

	var output string
	if cfg.jsonOutput {
		var err error
		output, err = formatStatusJSON(status)
		if err != nil {
			return oops.Code("STATUS_FORMAT_FAILED").Wrap(err)
		}
	} else {
		output = formatStatusTable(status)
	}

	cmd.Println(output)
	return nil
}

// queryProcessStatus probes the liveness and readiness endpoints at addr.
func queryProcessStatus(ctx context.Context, client *http.Client, addr string) ProcessStatus {
	status := ProcessStatus{Component: "web", Addr: addr}
	base := probeBase(addr)

	code, _, err := probe(ctx, client, base+"/healthz/liveness")
	if err != nil {
		status.Error = fmt.Sprintf("failed to connect: %v", err)
		return status
	}
	if code != http.StatusOK {
		status.Error = fmt.Sprintf("liveness returned %d", code)
		return status
	}
	status.Running = true

	code, body, err := probe(ctx, client, base+"/healthz/readiness")
	if err != nil {
		status.Health = "unknown"
		status.Error = fmt.Sprintf("readiness probe failed: %v", err)
		return status
	}
	status.Ready = code == http.StatusOK
	status.Health = strings.TrimSpace(body)
	return status
}

// probeBase turns a listen address such as ":9100" into a URL base.
func probeBase(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

func probe(ctx context.Context, client *http.Client, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status ProcessStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "PROCESS\tSTATUS\tHEALTH\tADDR")
	_, _ = fmt.Fprintln(w, "-------\t------\t------\t----")

	if status.Running {
		health := status.Health
		if health == "" {
			health = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\trunning\t%s\t%s\n", status.Component, health, status.Addr)
	} else {
		reason := "not running"
		if status.Error != "" {
			reason = status.Error
		}
		_, _ = fmt.Fprintf(w, "%s\tstopped\t-\t%s\t%s\n", status.Component, status.Addr, reason)
	}

	_ = w.Flush()
	return string(buf)
}

// formatStatusJSON formats the status as JSON.
func formatStatusJSON(status ProcessStatus) (string, error) {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal status: %w", err)
	}
	return string(data), nil
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
