// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/solhub/solhub/internal/catalog")

// Service provides project and sector operations.
type Service struct {
	projects ProjectRepository
	sectors  SectorRepository
}

// NewService creates a new Service.
func NewService(projects ProjectRepository, sectors SectorRepository) (*Service, error) {
	if projects == nil {
		return nil, oops.Code("CATALOG_INVALID_SERVICE").Errorf("project repository is required")
	}
	if sectors == nil {
		return nil, oops.Code("CATALOG_INVALID_SERVICE").Errorf("sector repository is required")
	}
	return &Service{projects: projects, sectors: sectors}, nil
}

// ListProjects returns every project with its sector.
func (s *Service) ListProjects(ctx context.Context) (_ []Project, err error) {
	ctx, span := tracer.Start(ctx, "catalog.ListProjects")
	defer func() { endSpan(span, err) }()

	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, storeError("list projects", err)
	}
	return projects, nil
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, id int) (_ *Project, err error) {
	ctx, span := tracer.Start(ctx, "catalog.GetProject",
		trace.WithAttributes(attribute.Int("catalog.project_id", id)))
	defer func() { endSpan(span, err) }()

	project, err := s.projects.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeProjectNotFound).With("project_id", id).Wrap(ErrProjectNotFound)
		}
		return nil, storeError("get project", err)
	}
	return project, nil
}

// ListProjectsBySector returns projects whose sector name contains name,
// ignoring case. An empty result is ErrNoProjects.
func (s *Service) ListProjectsBySector(ctx context.Context, name string) (_ []Project, err error) {
	ctx, span := tracer.Start(ctx, "catalog.ListProjectsBySector",
		trace.WithAttributes(attribute.String("catalog.sector", name)))
	defer func() { endSpan(span, err) }()

	projects, err := s.projects.ListBySectorName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, storeError("list projects by sector", err)
	}
	if len(projects) == 0 {
		return nil, oops.Code(CodeNoProjects).With("sector", name).Wrap(ErrNoProjects)
	}
	return projects, nil
}

// ListProjectsBySectorID returns the projects of one sector. An empty
// result is not an error.
func (s *Service) ListProjectsBySectorID(ctx context.Context, sectorID int) (_ []Project, err error) {
	ctx, span := tracer.Start(ctx, "catalog.ListProjectsBySectorID",
		trace.WithAttributes(attribute.Int("catalog.sector_id", sectorID)))
	defer func() { endSpan(span, err) }()

	projects, err := s.projects.ListBySectorID(ctx, sectorID)
	if err != nil {
		return nil, storeError("list projects by sector id", err)
	}
	return projects, nil
}

// AddProject stores p as a new project. Any ID on p is ignored.
func (s *Service) AddProject(ctx context.Context, p Project) (_ *Project, err error) {
	ctx, span := tracer.Start(ctx, "catalog.AddProject")
	defer func() { endSpan(span, err) }()

	p.ID = 0
	p.Sector = nil
	p.Title = strings.TrimSpace(p.Title)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.projects.Create(ctx, &p); err != nil {
		return nil, writeError("add project", p, err)
	}
	return &p, nil
}

// EditProject replaces the fields of project id with p.
func (s *Service) EditProject(ctx context.Context, id int, p Project) (err error) {
	ctx, span := tracer.Start(ctx, "catalog.EditProject",
		trace.WithAttributes(attribute.Int("catalog.project_id", id)))
	defer func() { endSpan(span, err) }()

	p.ID = id
	p.Sector = nil
	p.Title = strings.TrimSpace(p.Title)
	if err := p.Validate(); err != nil {
		return err
	}

	if err := s.projects.Update(ctx, &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeProjectNotFound).With("project_id", id).Wrap(ErrProjectNotFound)
		}
		return writeError("edit project", p, err)
	}
	return nil
}

// DeleteProject removes project id.
func (s *Service) DeleteProject(ctx context.Context, id int) (err error) {
	ctx, span := tracer.Start(ctx, "catalog.DeleteProject",
		trace.WithAttributes(attribute.Int("catalog.project_id", id)))
	defer func() { endSpan(span, err) }()

	if err := s.projects.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeProjectNotFound).With("project_id", id).Wrap(ErrProjectNotFound)
		}
		return storeError("delete project", err)
	}
	return nil
}

// ListSectors returns every sector ordered by name.
func (s *Service) ListSectors(ctx context.Context) (_ []Sector, err error) {
	ctx, span := tracer.Start(ctx, "catalog.ListSectors")
	defer func() { endSpan(span, err) }()

	sectors, err := s.sectors.List(ctx)
	if err != nil {
		return nil, storeError("list sectors", err)
	}
	return sectors, nil
}

func writeError(op string, p Project, err error) error {
	switch {
	case errors.Is(err, ErrUnknownSector):
		return oops.Code(CodeUnknownSector).With("sector_id", p.SectorID).Wrap(ErrUnknownSector)
	default:
		return storeError(op, err)
	}
}

func storeError(op string, err error) error {
	return oops.Code(CodeStoreError).With("operation", op).Wrap(errors.Join(ErrStore, err))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
