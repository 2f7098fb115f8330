// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package main

import (
	"context"

	"github.com/solhub/solhub/internal/catalog"
	"github.com/solhub/solhub/internal/observability"
	"github.com/solhub/solhub/internal/store"
	"github.com/solhub/solhub/internal/web"
)

// Deps contains injectable dependencies for the commands that touch the
// database or open listeners. Fields left nil use their default
// implementations.
type Deps struct {
	// DatabaseOpener connects to PostgreSQL.
	// Default: store.Open
	DatabaseOpener func(ctx context.Context, url string, opts store.Options) (Database, error)

	// MigratorFactory opens a schema migrator.
	// Default: store.NewMigrator
	MigratorFactory func(url string) (Migrator, error)

	// WebServerFactory creates the public site.
	// Default: web.NewServer
	WebServerFactory func(authn web.Authenticator, cat web.Catalog, opts web.Options) (WebServer, error)

	// ObservabilityServerFactory creates the metrics and probe server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// CatalogRepositories builds the catalog repositories over q.
	// Default: the postgres repositories
	CatalogRepositories func(q store.Querier) (catalog.ProjectRepository, catalog.SectorRepository)
}

// Database wraps the methods used from store.Store.
type Database interface {
	Querier() store.Querier
	Ping(ctx context.Context) error
	Close()
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
	Close() error
}

// WebServer wraps the methods used from web.Server.
type WebServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Listening() bool
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.DatabaseOpener == nil {
		out.DatabaseOpener = func(ctx context.Context, url string, opts store.Options) (Database, error) {
			db, err := store.Open(ctx, url, opts)
			if err != nil {
				return nil, err
			}
			return db, nil
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (Migrator, error) {
			m, err := store.NewMigrator(url)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	if out.WebServerFactory == nil {
		out.WebServerFactory = func(authn web.Authenticator, cat web.Catalog, opts web.Options) (WebServer, error) {
			s, err := web.NewServer(authn, cat, opts)
			if err != nil {
				return nil, err
			}
			return s, nil
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if out.CatalogRepositories == nil {
		out.CatalogRepositories = postgresCatalog
	}
	return &out
}
