// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package main

import (
	"net/url"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/solhub/solhub/internal/config"
	"github.com/solhub/solhub/internal/xdg"
)

const redacted = "[REDACTED]"

// newConfigCmd creates the config subcommand and its children.
func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load the config file, environment and flags exactly as serve does and
report the first problem found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := root.loadConfig(cmd); err != nil {
				return err
			}
			cmd.Println("Configuration is valid")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long:  `Print the merged configuration. Secrets are redacted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := renderConfig(cfg)
			if err != nil {
				return err
			}
			cmd.Print(out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			cmd.Println(string(schema))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if root.configFile != "" {
				cmd.Println(root.configFile)
				return nil
			}
			p, err := xdg.ConfigFile()
			if err != nil {
				return err
			}
			if _, statErr := os.Stat(p); statErr != nil {
				cmd.Printf("%s (not present)\n", p)
				return nil
			}
			cmd.Println(p)
			return nil
		},
	})

	return cmd
}

// renderConfig marshals cfg with its secrets replaced.
func renderConfig(cfg *config.Config) (string, error) {
	view := *cfg
	if view.Session.Secret != "" {
		view.Session.Secret = redacted
	}
	if view.Database.URL != "" {
		view.Database.URL = redactURL(view.Database.URL)
	}

	doc := map[string]any{
		"web": map[string]any{
			"addr":             view.Web.Addr,
			"shutdown_timeout": view.Web.ShutdownTimeout,
			"tls": map[string]any{
				"cert_file":   view.Web.TLS.CertFile,
				"key_file":    view.Web.TLS.KeyFile,
				"self_signed": view.Web.TLS.SelfSigned,
				"hosts":       view.Web.TLS.Hosts,
			},
		},
		"metrics": map[string]any{
			"addr": view.Metrics.Addr,
		},
		"database": map[string]any{
			"url":             view.Database.URL,
			"max_conns":       view.Database.MaxConns,
			"connect_retries": view.Database.ConnectRetries,
		},
		"session": map[string]any{
			"secret":         view.Session.Secret,
			"max_age":        view.Session.MaxAge,
			"refresh_window": view.Session.RefreshWindow,
			"secure_cookie":  view.Session.SecureCookie,
		},
		"log": map[string]any{
			"format": view.Log.Format,
			"level":  view.Log.Level,
		},
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", oops.Code("CONFIG_RENDER_FAILED").Wrap(err)
	}
	return string(out), nil
}

// redactURL masks the password in a connection URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	return u.Redacted()
}
