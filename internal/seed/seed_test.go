// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package seed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solhub/solhub/internal/catalog"
	"github.com/solhub/solhub/internal/catalog/catalogtest"
	"github.com/solhub/solhub/internal/seed"
	"github.com/solhub/solhub/pkg/errutil"
)

type failingProjects struct {
	catalog.ProjectRepository
	err error
}

func (f failingProjects) Create(context.Context, *catalog.Project) error { return f.err }

func TestDefault(t *testing.T) {
	d, err := seed.Default()
	require.NoError(t, err)

	assert.Len(t, d.Sectors, 5)
	assert.NotEmpty(t, d.Projects)
	assert.Contains(t, d.Sectors, "Food, Agriculture, and Land Use")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown key", yaml: "sectors: [A]\nprojects: []\nextra: 1\n"},
		{name: "empty sector", yaml: "sectors: [\"  \"]\n"},
		{name: "duplicate sector", yaml: "sectors: [A, A]\n"},
		{name: "empty title", yaml: "sectors: [A]\nprojects:\n  - title: \"\"\n    sector: A\n"},
		{name: "unlisted sector", yaml: "sectors: [A]\nprojects:\n  - title: T\n    sector: B\n"},
		{name: "not yaml", yaml: "sectors: [A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seed.Parse([]byte(tt.yaml))
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "SEED_INVALID")
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	mem := catalogtest.NewMemory()
	d, err := seed.Default()
	require.NoError(t, err)

	res, err := seed.Apply(ctx, d, mem.Projects(), mem.Sectors())
	require.NoError(t, err)
	assert.Equal(t, seed.Result{
		SectorsCreated:  len(d.Sectors),
		ProjectsCreated: len(d.Projects),
	}, res)

	projects, err := mem.Projects().List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, len(d.Projects))
	for _, p := range projects {
		require.NotNil(t, p.Sector, "project %q should join its sector", p.Title)
	}

	t.Run("second run skips everything", func(t *testing.T) {
		res, err := seed.Apply(ctx, d, mem.Projects(), mem.Sectors())
		require.NoError(t, err)
		assert.Equal(t, seed.Result{
			SectorsSkipped:  len(d.Sectors),
			ProjectsSkipped: len(d.Projects),
		}, res)
	})
}

func TestApply_UsesExistingSectorIDs(t *testing.T) {
	ctx := context.Background()
	mem := catalogtest.NewMemory()
	mem.AddSector("Unrelated")
	energy := mem.AddSector("Energy")

	d, err := seed.Parse([]byte("sectors: [Energy]\nprojects:\n  - title: Wind\n    sector: Energy\n"))
	require.NoError(t, err)

	res, err := seed.Apply(ctx, d, mem.Projects(), mem.Sectors())
	require.NoError(t, err)
	assert.Equal(t, 1, res.SectorsSkipped)

	projects, err := mem.Projects().ListBySectorID(ctx, energy.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Wind", projects[0].Title)
}

func TestApply_MatchesProjectsWithinSector(t *testing.T) {
	ctx := context.Background()
	mem := catalogtest.NewMemory()
	energy := mem.AddSector("Energy")
	food := mem.AddSector("Food")
	for _, title := range []string{"Wind", "Wind", "Compost"} {
		require.NoError(t, mem.Projects().Create(ctx, &catalog.Project{Title: title, SectorID: energy.ID}))
	}

	d, err := seed.Parse([]byte("sectors: [Energy, Food]\nprojects:\n" +
		"  - title: Wind\n    sector: Energy\n" +
		"  - title: Compost\n    sector: Food\n"))
	require.NoError(t, err)

	res, err := seed.Apply(ctx, d, mem.Projects(), mem.Sectors())
	require.NoError(t, err)
	assert.Equal(t, seed.Result{SectorsSkipped: 2, ProjectsCreated: 1, ProjectsSkipped: 1}, res)

	projects, err := mem.Projects().ListBySectorID(ctx, food.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Compost", projects[0].Title)
}

func TestApply_StoreFailure(t *testing.T) {
	ctx := context.Background()
	d, err := seed.Default()
	require.NoError(t, err)

	t.Run("sector", func(t *testing.T) {
		mem := catalogtest.NewMemory()
		mem.Err = errors.New("connection reset")

		_, err := seed.Apply(ctx, d, mem.Projects(), mem.Sectors())
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "SEED_FAILED")
	})

	t.Run("project", func(t *testing.T) {
		mem := catalogtest.NewMemory()
		projects := failingProjects{ProjectRepository: mem.Projects(), err: errors.New("disk full")}

		res, err := seed.Apply(ctx, d, projects, mem.Sectors())
		require.Error(t, err)
		errutil.AssertErrorContext(t, err, "project", d.Projects[0].Title)
		assert.Equal(t, len(d.Sectors), res.SectorsCreated)
		assert.Zero(t, res.ProjectsCreated)
	})
}
