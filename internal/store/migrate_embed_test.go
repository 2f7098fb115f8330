// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package store

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	names := make(map[string]bool)
	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	for _, entry := range entries {
		names[entry.Name()] = true
		assert.True(t, pattern.MatchString(entry.Name()),
			"file %s should match NNNNNN_name.(up|down).sql", entry.Name())
	}

	// every up has a down
	for name := range names {
		if base, ok := strings.CutSuffix(name, ".up.sql"); ok {
			assert.True(t, names[base+".down.sql"], "missing down migration for %s", base)
		}
	}
}

func TestAccountsMigration_UniqueIdentifier(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/000001_accounts.up.sql")
	require.NoError(t, err)
	sql := string(data)

	assert.Contains(t, sql, "CREATE UNIQUE INDEX accounts_identifier_key ON accounts (identifier)")
	assert.NotContains(t, strings.ToLower(sql), "lower(identifier)", "identifiers are case-sensitive")
	assert.Contains(t, sql, "login_history JSONB")
}
