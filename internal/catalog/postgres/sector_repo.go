// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/solhub/solhub/internal/catalog"
	"github.com/solhub/solhub/internal/store"
)

// SectorRepository implements catalog.SectorRepository using PostgreSQL.
type SectorRepository struct {
	pool store.Querier
}

// NewSectorRepository creates a new SectorRepository.
func NewSectorRepository(pool store.Querier) *SectorRepository {
	return &SectorRepository{pool: pool}
}

// List returns every sector ordered by name.
func (r *SectorRepository) List(ctx context.Context) ([]catalog.Sector, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, sector_name FROM sectors ORDER BY sector_name`)
	if err != nil {
		return nil, oops.Code("SECTOR_QUERY_FAILED").With("operation", "list sectors").Wrap(err)
	}
	defer rows.Close()

	sectors := []catalog.Sector{}
	for rows.Next() {
		var s catalog.Sector
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, oops.Code("SECTOR_QUERY_FAILED").With("operation", "scan sector row").Wrap(err)
		}
		sectors = append(sectors, s)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SECTOR_QUERY_FAILED").With("operation", "iterate sectors").Wrap(err)
	}
	return sectors, nil
}

// GetByName returns the sector with exactly this name.
func (r *SectorRepository) GetByName(ctx context.Context, name string) (*catalog.Sector, error) {
	var s catalog.Sector
	err := r.pool.QueryRow(ctx,
		`SELECT id, sector_name FROM sectors WHERE sector_name = $1`, name,
	).Scan(&s.ID, &s.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SECTOR_NOT_FOUND").With("sector", name).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SECTOR_GET_FAILED").With("sector", name).Wrap(err)
	}
	return &s, nil
}

// Create inserts s and sets s.ID.
func (r *SectorRepository) Create(ctx context.Context, s *catalog.Sector) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sectors (sector_name) VALUES ($1) RETURNING id`, s.Name,
	).Scan(&s.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("SECTOR_DUPLICATE").With("sector", s.Name).Wrap(catalog.ErrDuplicate)
		}
		return oops.Code("SECTOR_CREATE_FAILED").With("sector", s.Name).Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ catalog.SectorRepository = (*SectorRepository)(nil)
