// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/solhub/solhub/internal/config"
	"github.com/solhub/solhub/internal/logging"
)

const serviceName = "solhub"

// rootOptions holds the flags every subcommand sees.
type rootOptions struct {
	configFile string
}

// NewRootCmd creates the root command for the SolHub CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "SolHub - a catalog of climate solutions",
		Long: `SolHub serves a catalog of climate-change solutions grouped by sector.
Visitors browse projects; registered users add, edit and delete them.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/solhub/config.yaml)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

// loadConfig resolves the configuration for cmd, applying any of its flags
// the user set.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(
		config.WithFile(o.configFile),
		config.WithFlags(cmd.Flags()),
	)
}

// setupLogging installs the default logger described by cfg.
func setupLogging(cfg *config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.SetDefault(serviceName, version, cfg.Log.Format, level)
}
