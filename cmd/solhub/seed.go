// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package main

import (
	"context"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/solhub/solhub/internal/seed"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout   time.Duration
	file      string
	noMigrate bool
}

// newSeedCmd creates the seed subcommand.
func newSeedCmd(root *rootOptions) *cobra.Command {
	return newSeedCmdWithDeps(root, nil)
}

func newSeedCmdWithDeps(root *rootOptions, deps *Deps) *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the starter sectors and projects",
		Long: `Creates the starter sectors and projects, or those in --file.
This command is idempotent - it will not create duplicates if run multiple times.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, root, cfg, deps)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().StringVar(&cfg.file, "file", "", "seed YAML file (default: built-in starter data)")
	cmd.Flags().BoolVar(&cfg.noMigrate, "no-migrate", false, "skip applying pending migrations first")
	cmd.Flags().String("database-url", "", "PostgreSQL URL (overrides DATABASE_URL)")

	return cmd
}

func runSeed(cmd *cobra.Command, root *rootOptions, sc *seedConfig, deps *Deps) error {
	deps = deps.withDefaults()

	data, err := loadSeedData(sc.file)
	if err != nil {
		return err
	}

	cfg, err := root.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, sc.timeout)
	defer cancel()

	if !sc.noMigrate {
		m, err := openMigrator(cmd, cfg, deps)
		if err != nil {
			return err
		}
		migrateErr := runMigrateUp(cmd, m)
		if closeErr := m.Close(); closeErr != nil {
			cmd.PrintErrf("warning: closing migrator: %v\n", closeErr)
		}
		if migrateErr != nil {
			return migrateErr
		}
	}

	db, err := deps.DatabaseOpener(ctx, cfg.Database.URL, storeOptions(cfg))
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()

	projects, sectors := deps.CatalogRepositories(db.Querier())

	cmd.Println("Seeding catalog...")
	result, err := seed.Apply(ctx, data, projects, sectors)
	if err != nil {
		return err
	}

	cmd.Printf("Sectors: %d created, %d already present\n", result.SectorsCreated, result.SectorsSkipped)
	cmd.Printf("Projects: %d created, %d already present\n", result.ProjectsCreated, result.ProjectsSkipped)
	return nil
}

func loadSeedData(path string) (*seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	return seed.Parse(raw)
}
