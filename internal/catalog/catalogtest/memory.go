// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package catalogtest provides an in-memory catalog for tests.
package catalogtest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/solhub/solhub/internal/catalog"
)

// Memory implements catalog.ProjectRepository and catalog.SectorRepository.
type Memory struct {
	mu         sync.Mutex
	sectors    []catalog.Sector
	projects   []catalog.Project
	nextSector int
	nextProj   int

	// Err, when set, is returned by every call.
	Err error
}

// NewMemory creates an empty catalog.
func NewMemory() *Memory {
	return &Memory{nextSector: 1, nextProj: 1}
}

// Projects returns m as a catalog.ProjectRepository.
func (m *Memory) Projects() catalog.ProjectRepository { return projectRepo{m} }

// Sectors returns m as a catalog.SectorRepository.
func (m *Memory) Sectors() catalog.SectorRepository { return sectorRepo{m} }

// AddSector stores a sector and returns it with its ID.
func (m *Memory) AddSector(name string) catalog.Sector {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := catalog.Sector{ID: m.nextSector, Name: name}
	m.nextSector++
	m.sectors = append(m.sectors, s)
	return s
}

func (m *Memory) sectorByID(id int) (catalog.Sector, bool) {
	for _, s := range m.sectors {
		if s.ID == id {
			return s, true
		}
	}
	return catalog.Sector{}, false
}

func (m *Memory) withSector(p catalog.Project) catalog.Project {
	if s, ok := m.sectorByID(p.SectorID); ok {
		p.Sector = &s
	}
	return p
}

func (m *Memory) filter(keep func(catalog.Project, catalog.Sector) bool) []catalog.Project {
	out := []catalog.Project{}
	for _, p := range m.projects {
		s, _ := m.sectorByID(p.SectorID)
		if keep(p, s) {
			out = append(out, m.withSector(p))
		}
	}
	return out
}

type projectRepo struct{ m *Memory }

func (r projectRepo) List(_ context.Context) ([]catalog.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	return r.m.filter(func(catalog.Project, catalog.Sector) bool { return true }), nil
}

func (r projectRepo) ListBySectorName(_ context.Context, name string) ([]catalog.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	needle := strings.ToLower(name)
	return r.m.filter(func(_ catalog.Project, s catalog.Sector) bool {
		return strings.Contains(strings.ToLower(s.Name), needle)
	}), nil
}

func (r projectRepo) ListBySectorID(_ context.Context, sectorID int) ([]catalog.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	return r.m.filter(func(p catalog.Project, _ catalog.Sector) bool { return p.SectorID == sectorID }), nil
}

func (r projectRepo) Get(_ context.Context, id int) (*catalog.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	for _, p := range r.m.projects {
		if p.ID == id {
			out := r.m.withSector(p)
			return &out, nil
		}
	}
	return nil, oops.With("project_id", id).Wrap(catalog.ErrNotFound)
}

func (r projectRepo) checkWrite(p *catalog.Project) error {
	if _, ok := r.m.sectorByID(p.SectorID); !ok {
		return catalog.ErrUnknownSector
	}
	return nil
}

func (r projectRepo) Create(_ context.Context, p *catalog.Project) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	if err := r.checkWrite(p); err != nil {
		return err
	}
	p.ID = r.m.nextProj
	r.m.nextProj++
	stored := *p
	stored.Sector = nil
	r.m.projects = append(r.m.projects, stored)
	return nil
}

func (r projectRepo) Update(_ context.Context, p *catalog.Project) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	i := slices.IndexFunc(r.m.projects, func(other catalog.Project) bool { return other.ID == p.ID })
	if i < 0 {
		return catalog.ErrNotFound
	}
	if err := r.checkWrite(p); err != nil {
		return err
	}
	stored := *p
	stored.Sector = nil
	r.m.projects[i] = stored
	return nil
}

func (r projectRepo) Delete(_ context.Context, id int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	i := slices.IndexFunc(r.m.projects, func(p catalog.Project) bool { return p.ID == id })
	if i < 0 {
		return catalog.ErrNotFound
	}
	r.m.projects = slices.Delete(r.m.projects, i, i+1)
	return nil
}

type sectorRepo struct{ m *Memory }

func (r sectorRepo) List(_ context.Context) ([]catalog.Sector, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	out := slices.Clone(r.m.sectors)
	slices.SortFunc(out, func(a, b catalog.Sector) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r sectorRepo) GetByName(_ context.Context, name string) (*catalog.Sector, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return nil, r.m.Err
	}
	for _, s := range r.m.sectors {
		if s.Name == name {
			out := s
			return &out, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (r sectorRepo) Create(_ context.Context, s *catalog.Sector) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.Err != nil {
		return r.m.Err
	}
	for _, other := range r.m.sectors {
		if other.Name == s.Name {
			return errors.Join(catalog.ErrDuplicate, errors.New("sector "+s.Name))
		}
	}
	s.ID = r.m.nextSector
	r.m.nextSector++
	r.m.sectors = append(r.m.sectors, *s)
	return nil
}

var (
	_ catalog.ProjectRepository = projectRepo{}
	_ catalog.SectorRepository  = sectorRepo{}
)
