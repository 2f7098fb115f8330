// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package catalog manages the climate projects listed on the site and the
// sectors they are grouped by.
package catalog

import (
	"context"
	"strings"

	"github.com/samber/oops"
)

// Sector groups projects, e.g. "Energy" or "Food, Agriculture, and Land Use".
type Sector struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"sector_name" yaml:"name"`
}

// Project is one climate solution.
type Project struct {
	ID                int     `json:"id"`
	Title             string  `json:"title"`
	FeatureImgURL     string  `json:"feature_img_url"`
	SummaryShort      string  `json:"summary_short"`
	IntroShort        string  `json:"intro_short"`
	Impact            string  `json:"impact"`
	OriginalSourceURL string  `json:"original_source_url"`
	SectorID          int     `json:"sector_id"`
	Sector            *Sector `json:"sector,omitempty"`
}

// MaxTitleLength bounds project titles.
const MaxTitleLength = 255

// Validate checks the fields a project must have before it is stored.
func (p *Project) Validate() error {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return oops.Code(CodeInvalidProject).With("field", "title").Wrapf(ErrInvalidProject, "title is required")
	}
	if len(title) > MaxTitleLength {
		return oops.Code(CodeInvalidProject).With("field", "title").Wrapf(ErrInvalidProject, "title too long")
	}
	if p.SectorID <= 0 {
		return oops.Code(CodeInvalidProject).With("field", "sector_id").Wrapf(ErrInvalidProject, "sector is required")
	}
	return nil
}

// ProjectRepository persists projects. Every read joins the sector.
type ProjectRepository interface {
	List(ctx context.Context) ([]Project, error)
	// ListBySectorName matches sector names case-insensitively by substring.
	ListBySectorName(ctx context.Context, name string) ([]Project, error)
	ListBySectorID(ctx context.Context, sectorID int) ([]Project, error)
	// Get returns an error matching ErrNotFound when absent.
	Get(ctx context.Context, id int) (*Project, error)
	// Create assigns p.ID.
	Create(ctx context.Context, p *Project) error
	// Update returns an error matching ErrNotFound when no row matched.
	Update(ctx context.Context, p *Project) error
	// Delete returns an error matching ErrNotFound when no row matched.
	Delete(ctx context.Context, id int) error
}

// SectorRepository persists sectors.
type SectorRepository interface {
	List(ctx context.Context) ([]Sector, error)
	GetByName(ctx context.Context, name string) (*Sector, error)
	// Create assigns s.ID. Returns an error matching ErrDuplicate when the
	// name exists.
	Create(ctx context.Context, s *Sector) error
}
