// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/solhub/solhub/internal/xdg"
)

// Environment variables that override values from the config file.
const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvSessionSecret = "SOLHUB_SESSION_SECRET"
)

var envKeys = map[string]string{
	EnvDatabaseURL:   "database.url",
	EnvSessionSecret: "session.secret",
}

// flagKeys maps command-line flag names to config keys. Only flags the
// user set explicitly are applied.
var flagKeys = map[string]string{
	"addr":            "web.addr",
	"metrics-addr":    "metrics.addr",
	"database-url":    "database.url",
	"log-format":      "log.format",
	"log-level":       "log.level",
	"tls-cert":        "web.tls.cert_file",
	"tls-key":         "web.tls.key_file",
	"tls-self-signed": "web.tls.self_signed",
}

type loader struct {
	path      string
	explicit  bool
	flags     *pflag.FlagSet
	lookupEnv func(string) (string, bool)
}

// Option configures Load.
type Option func(*loader)

// WithFile reads the config from path, which must exist. An empty path
// falls back to the XDG default, which may be absent.
func WithFile(path string) Option {
	return func(l *loader) {
		if path != "" {
			l.path = path
			l.explicit = true
		}
	}
}

// WithFlags applies explicitly set flags on top of file and environment.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(l *loader) { l.flags = fs }
}

// WithEnv replaces os.LookupEnv.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(l *loader) { l.lookupEnv = lookup }
}

// Load builds a validated Config from defaults, the YAML file, the
// environment, and flags.
func Load(opts ...Option) (*Config, error) {
	l := &loader{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}

	k := koanf.New(".")

	if !l.explicit {
		if p, err := xdg.ConfigFile(); err == nil {
			l.path = p
		}
	}
	if l.path != "" {
		if err := loadFile(k, l.path, l.explicit); err != nil {
			return nil, err
		}
	}

	for env, key := range envKeys {
		if v, ok := l.lookupEnv(env); ok && v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, oops.Code("CONFIG_LOAD_FAILED").With("env", env).Wrap(err)
			}
		}
	}

	if l.flags != nil {
		provider := posflag.ProviderWithFlag(l.flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(l.flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	fp := file.Provider(path)

	data, err := fp.ReadBytes()
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}

	if err := ValidateYAML(data); err != nil {
		return oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
	}

	if err := k.Load(fp, yaml.Parser()); err != nil {
		return oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
