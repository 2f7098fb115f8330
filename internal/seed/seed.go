// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package seed loads the initial sectors and sample projects.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/solhub/solhub/internal/catalog"
)

//go:embed data.yaml
var defaultData []byte

// Data is the parsed seed document.
type Data struct {
	Sectors  []string      `yaml:"sectors"`
	Projects []ProjectSeed `yaml:"projects"`
}

// ProjectSeed is a project that names its sector instead of referencing it
// by id.
type ProjectSeed struct {
	Title             string `yaml:"title"`
	Sector            string `yaml:"sector"`
	FeatureImgURL     string `yaml:"feature_img_url"`
	SummaryShort      string `yaml:"summary_short"`
	IntroShort        string `yaml:"intro_short"`
	Impact            string `yaml:"impact"`
	OriginalSourceURL string `yaml:"original_source_url"`
}

// Result counts what Apply did.
type Result struct {
	SectorsCreated  int `json:"sectors_created"`
	SectorsSkipped  int `json:"sectors_skipped"`
	ProjectsCreated int `json:"projects_created"`
	ProjectsSkipped int `json:"projects_skipped"`
}

// Default returns the embedded seed data.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Parse decodes and checks a seed document. Every project must name a
// listed sector.
func Parse(raw []byte) (*Data, error) {
	var d Data
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, oops.Code("SEED_INVALID").Wrapf(err, "decode seed data")
	}

	known := make(map[string]bool, len(d.Sectors))
	for _, name := range d.Sectors {
		if strings.TrimSpace(name) == "" {
			return nil, oops.Code("SEED_INVALID").Errorf("sector name cannot be empty")
		}
		if known[name] {
			return nil, oops.Code("SEED_INVALID").With("sector", name).Errorf("sector listed twice")
		}
		known[name] = true
	}

	for i, p := range d.Projects {
		if strings.TrimSpace(p.Title) == "" {
			return nil, oops.Code("SEED_INVALID").With("index", i).Errorf("project title cannot be empty")
		}
		if !known[p.Sector] {
			return nil, oops.Code("SEED_INVALID").
				With("project", p.Title).
				With("sector", p.Sector).
				Errorf("project references an unlisted sector")
		}
	}

	return &d, nil
}

// Apply inserts the sectors and projects. Sectors are matched by name and
// projects by title within their sector; matches are skipped, so running it
// twice is harmless. Titles are not unique, so a visitor's project with a
// seed title in another sector does not stop the seed row.
func Apply(ctx context.Context, d *Data, projects catalog.ProjectRepository, sectors catalog.SectorRepository) (Result, error) {
	var res Result
	ids := make(map[string]int, len(d.Sectors))

	for _, name := range d.Sectors {
		s := catalog.Sector{Name: name}
		err := sectors.Create(ctx, &s)
		switch {
		case err == nil:
			res.SectorsCreated++
		case errors.Is(err, catalog.ErrDuplicate):
			existing, getErr := sectors.GetByName(ctx, name)
			if getErr != nil {
				return res, oops.Code("SEED_FAILED").With("sector", name).Wrap(getErr)
			}
			s = *existing
			res.SectorsSkipped++
		default:
			return res, oops.Code("SEED_FAILED").With("sector", name).Wrap(err)
		}
		ids[name] = s.ID
	}

	present, err := existingProjects(ctx, projects)
	if err != nil {
		return res, err
	}

	for _, ps := range d.Projects {
		p := catalog.Project{
			Title:             ps.Title,
			FeatureImgURL:     ps.FeatureImgURL,
			SummaryShort:      strings.TrimSpace(ps.SummaryShort),
			IntroShort:        strings.TrimSpace(ps.IntroShort),
			Impact:            strings.TrimSpace(ps.Impact),
			OriginalSourceURL: ps.OriginalSourceURL,
			SectorID:          ids[ps.Sector],
		}
		key := projectKey{sectorID: p.SectorID, title: p.Title}
		if present[key] {
			slog.DebugContext(ctx, "seed project already present", "title", p.Title)
			res.ProjectsSkipped++
			continue
		}
		if err := projects.Create(ctx, &p); err != nil {
			return res, oops.Code("SEED_FAILED").With("project", p.Title).Wrap(err)
		}
		present[key] = true
		res.ProjectsCreated++
	}

	return res, nil
}

type projectKey struct {
	sectorID int
	title    string
}

func existingProjects(ctx context.Context, projects catalog.ProjectRepository) (map[projectKey]bool, error) {
	list, err := projects.List(ctx)
	if err != nil {
		return nil, oops.Code("SEED_FAILED").Wrapf(err, "list existing projects")
	}
	present := make(map[projectKey]bool, len(list))
	for _, p := range list {
		present[projectKey{sectorID: p.SectorID, title: p.Title}] = true
	}
	return present, nil
}
