// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

//go:build integration

// Package storetest starts a disposable PostgreSQL for integration tests.
package storetest

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/solhub/solhub/internal/store"
)

// Database is a migrated PostgreSQL running in a container.
type Database struct {
	URL       string
	Store     *store.Store
	container *postgres.PostgresContainer
}

// Start runs postgres:16-alpine, applies every migration, and opens a Store.
func Start(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("solhub_test"),
		postgres.WithUsername("solhub"),
		postgres.WithPassword("solhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, oops.With("operation", "start postgres container").Wrap(err)
	}

	db := &Database{container: container}
	db.URL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		db.Stop(ctx)
		return nil, oops.With("operation", "get connection string").Wrap(err)
	}

	migrator, err := store.NewMigrator(db.URL)
	if err != nil {
		db.Stop(ctx)
		return nil, err
	}
	upErr := migrator.Up()
	_ = migrator.Close() //nolint:errcheck // test setup
	if upErr != nil {
		db.Stop(ctx)
		return nil, upErr
	}

	db.Store, err = store.Open(ctx, db.URL, store.DefaultOptions())
	if err != nil {
		db.Stop(ctx)
		return nil, err
	}
	return db, nil
}

// Truncate empties every application table.
func (d *Database) Truncate(ctx context.Context) error {
	_, err := d.Store.Pool().Exec(ctx, `TRUNCATE accounts, projects, sectors RESTART IDENTITY CASCADE`)
	return err
}

// Stop closes the pool and terminates the container.
func (d *Database) Stop(ctx context.Context) {
	if d.Store != nil {
		d.Store.Close()
	}
	if d.container != nil {
		_ = d.container.Terminate(ctx) //nolint:errcheck // best effort teardown
	}
}
