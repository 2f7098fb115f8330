// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package main

import (
	"context"
	cryptotls "crypto/tls"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/solhub/solhub/internal/auth"
	authpg "github.com/solhub/solhub/internal/auth/postgres"
	"github.com/solhub/solhub/internal/catalog"
	catalogpg "github.com/solhub/solhub/internal/catalog/postgres"
	"github.com/solhub/solhub/internal/config"
	"github.com/solhub/solhub/internal/observability"
	"github.com/solhub/solhub/internal/store"
	"github.com/solhub/solhub/internal/tls"
	"github.com/solhub/solhub/internal/web"
	"github.com/solhub/solhub/internal/xdg"
)

const (
	readinessTimeout = 2 * time.Second
	retryBaseDelay   = 200 * time.Millisecond
)

// newServeCmd creates the serve subcommand.
func newServeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the public web site and, unless metrics.addr is empty, the
metrics and health probe listener. Requires DATABASE_URL and
SOLHUB_SESSION_SECRET (or the matching config keys).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	defaults := config.Default()
	cmd.Flags().String("addr", defaults.Web.Addr, "web listen address")
	cmd.Flags().String("metrics-addr", defaults.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database-url", "", "PostgreSQL URL (overrides DATABASE_URL)")
	cmd.Flags().String("log-format", defaults.Log.Format, "log format (json or text)")
	cmd.Flags().String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	cmd.Flags().String("tls-cert", "", "PEM certificate for HTTPS (requires --tls-key)")
	cmd.Flags().String("tls-key", "", "PEM private key for HTTPS")
	cmd.Flags().Bool("tls-self-signed", false, "serve HTTPS with a generated development certificate")

	return cmd
}

func storeOptions(cfg *config.Config) store.Options {
	return store.Options{
		MaxConns:       cfg.Database.MaxConns,
		ConnectRetries: cfg.Database.ConnectRetries,
		RetryBaseDelay: retryBaseDelay,
	}
}

// webTLSConfig returns nil when the site is served over plain HTTP.
func webTLSConfig(cfg *config.Config, logger *slog.Logger) (*cryptotls.Config, error) {
	switch {
	case cfg.Web.TLS.CertFile != "":
		return tls.KeyPairConfig(cfg.Web.TLS.CertFile, cfg.Web.TLS.KeyFile)
	case cfg.Web.TLS.SelfSigned:
		dir, err := xdg.CertsDir()
		if err != nil {
			return nil, err
		}
		if err := xdg.EnsureDir(dir); err != nil {
			return nil, err
		}
		tlsConfig, err := tls.SelfSignedConfig(dir, cfg.Web.TLS.Hosts, time.Now())
		if err != nil {
			return nil, err
		}
		logger.Warn("serving a self-signed development certificate", "certs_dir", dir)
		return tlsConfig, nil
	default:
		return nil, nil
	}
}

func postgresCatalog(q store.Querier) (catalog.ProjectRepository, catalog.SectorRepository) {
	return catalogpg.NewProjectRepository(q), catalogpg.NewSectorRepository(q)
}

// runServeWithDeps runs the server until ctx ends, a signal arrives, or a
// listener fails. If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.Config, cmd *cobra.Command, deps *Deps) error {
	deps = deps.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	if err := cfg.RequireSession(); err != nil {
		return err
	}

	logger := setupLogging(cfg)
	logger.Info("starting solhub",
		"version", version,
		"addr", cfg.Web.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"tls", cfg.Web.TLS.Enabled(),
	)

	tlsConfig, err := webTLSConfig(cfg, logger)
	if err != nil {
		return oops.Code("WEB_TLS_FAILED").Wrap(err)
	}

	db, err := deps.DatabaseOpener(ctx, cfg.Database.URL, storeOptions(cfg))
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer db.Close()
	logger.Info("connected to database")

	authSvc, err := auth.NewService(authpg.NewAccountRepository(db.Querier()), auth.NewArgon2idHasher())
	if err != nil {
		return err
	}
	catSvc, err := catalog.NewService(deps.CatalogRepositories(db.Querier()))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		webSrv    WebServer
		obsServer ObservabilityServer
		metrics   *observability.Metrics
	)

	if cfg.Metrics.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Metrics.Addr, func() bool {
			if webSrv == nil || !webSrv.Listening() {
				return false
			}
			pingCtx, pingCancel := context.WithTimeout(context.Background(), readinessTimeout)
			defer pingCancel()
			return db.Ping(pingCtx) == nil
		})
		metrics = obsServer.Metrics()
	}

	webSrv, err = deps.WebServerFactory(authSvc, catSvc, web.Options{
		Addr:           cfg.Web.Addr,
		SessionSecret:  cfg.Session.Secret,
		SessionMaxAge:  cfg.SessionMaxAge(),
		SessionRefresh: cfg.SessionRefreshWindow(),
		SecureCookie:   cfg.Session.SecureCookie,
		TLSConfig:      tlsConfig,
		Metrics:        metrics,
		Logger:         logger,
	})
	if err != nil {
		return oops.Code("WEB_INIT_FAILED").Wrap(err)
	}

	webErrChan, err := webSrv.Start()
	if err != nil {
		return oops.Code("WEB_START_FAILED").With("addr", cfg.Web.Addr).Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, webErrChan, "web")
	logger.Info("web server listening", "addr", webSrv.Addr())

	if obsServer != nil {
		obsErrChan, err := obsServer.Start()
		if err != nil {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
			defer stopCancel()
			if stopErr := webSrv.Stop(stopCtx); stopErr != nil {
				logger.Warn("failed to stop web server during cleanup", "error", stopErr)
			}
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("SolHub started")

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer shutdownCancel()

	if err := webSrv.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping web server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels ctx when a server reports an error. It
// returns when the channel closes or ctx ends.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
