// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package main

import (
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/solhub/solhub/internal/config"
	"github.com/solhub/solhub/internal/store"
)

// newMigrateCmd creates the migrate subcommand and its children.
func newMigrateCmd(root *rootOptions) *cobra.Command {
	return newMigrateCmdWithDeps(root, nil)
}

func newMigrateCmdWithDeps(root *rootOptions, deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Apply or roll back the embedded PostgreSQL schema migrations.
Without a subcommand, applies every pending migration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, root, deps, runMigrateUp)
		},
	}
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL URL (overrides DATABASE_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, root, deps, runMigrateUp)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Long:  `Roll back the last --steps migrations, or all of them with --all.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := cmd.Flags().GetBool("all")
			if err != nil {
				return err
			}
			return withMigrator(cmd, root, deps, func(cmd *cobra.Command, m Migrator) error {
				if all {
					cmd.Println("Rolling back all migrations...")
					if err := m.Down(); err != nil {
						return err
					}
				} else {
					if steps < 1 {
						return oops.Code("MIGRATION_INVALID_STEPS").Errorf("--steps must be at least 1")
					}
					cmd.Printf("Rolling back %d migration(s)...\n", steps)
					if err := m.Steps(-steps); err != nil {
						return err
					}
				}
				cmd.Println("Rollback completed successfully")
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	down.Flags().Bool("all", false, "roll back every migration")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, root, deps, runMigrateVersion)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Long: `Record VERSION as the current schema version and clear the dirty flag.
Use only after repairing a failed migration by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 0 {
				return oops.Code("MIGRATION_INVALID_VERSION").With("version", args[0]).Errorf("version must be a non-negative integer")
			}
			return withMigrator(cmd, root, deps, func(cmd *cobra.Command, m Migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				cmd.Printf("Schema version forced to %d\n", v)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, root *rootOptions, deps *Deps, run func(*cobra.Command, Migrator) error) error {
	deps = deps.withDefaults()

	cfg, err := root.loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	m, err := openMigrator(cmd, cfg, deps)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			cmd.PrintErrf("warning: closing migrator: %v\n", closeErr)
		}
	}()

	return run(cmd, m)
}

func openMigrator(cmd *cobra.Command, cfg *config.Config, deps *Deps) (Migrator, error) {
	cmd.Println("Connecting to database...")
	m, err := deps.MigratorFactory(cfg.Database.URL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "open migrator").Wrap(err)
	}
	return m, nil
}

func runMigrateUp(cmd *cobra.Command, m Migrator) error {
	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		cmd.Println("No pending migrations")
		return nil
	}

	cmd.Printf("Applying %d migration(s)...\n", len(pending))
	for _, v := range pending {
		if name, nameErr := store.MigrationName(v); nameErr == nil && name != "" {
			cmd.Printf("  %s\n", name)
		}
	}
	if err := m.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateVersion(cmd *cobra.Command, m Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if v == 0 {
		cmd.Println("No migrations applied")
		return nil
	}

	name, err := store.MigrationName(v)
	if err != nil || name == "" {
		name = "unknown"
	}
	state := "clean"
	if dirty {
		state = "dirty"
	}
	cmd.Printf("Version %d (%s), %s\n", v, name, state)
	return nil
}
