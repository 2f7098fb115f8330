// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package postgres implements the catalog repositories on PostgreSQL.
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

const projectColumns = `
	p.id, p.title, p.feature_img_url, p.summary_short, p.intro_short,
	p.impact, p.original_source_url, p.sector_id, s.id, s.sector_name`

const projectFrom = `
	FROM projects p
	JOIN sectors s ON s.id = p.sector_id`

// ProjectRepository implements catalog.ProjectRepository using PostgreSQL.
type ProjectRepository struct {
	pool store.Querier
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(pool store.Querier) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// List returns every project ordered by id.
func (r *ProjectRepository) List(ctx context.Context) ([]catalog.Project, error) {
	return r.query(ctx, "list projects",
		`SELECT`+projectColumns+projectFrom+` ORDER BY p.id`)
}

// ListBySectorName matches sector names with ILIKE '%name%'.
func (r *ProjectRepository) ListBySectorName(ctx context.Context, name string) ([]catalog.Project, error) {
	return r.query(ctx, "list projects by sector name",
		`SELECT`+projectColumns+projectFrom+` WHERE s.sector_name ILIKE '%' || $1 || '%' ORDER BY p.id`,
		escapeLike(name))
}

// ListBySectorID returns the projects of one sector.
func (r *ProjectRepository) ListBySectorID(ctx context.Context, sectorID int) ([]catalog.Project, error) {
	return r.query(ctx, "list projects by sector id",
		`SELECT`+projectColumns+projectFrom+` WHERE p.sector_id = $1 ORDER BY p.id`,
		sectorID)
}

// Get retrieves one project by id.
func (r *ProjectRepository) Get(ctx context.Context, id int) (*catalog.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+projectColumns+projectFrom+` WHERE p.id = $1`, id)

	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROJECT_NOT_FOUND").With("project_id", id).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PROJECT_GET_FAILED").With("project_id", id).Wrap(err)
	}
	return p, nil
}

// Create inserts p and sets p.ID.
func (r *ProjectRepository) Create(ctx context.Context, p *catalog.Project) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO projects (
			title, feature_img_url, summary_short, intro_short,
			impact, original_source_url, sector_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		p.Title, p.FeatureImgURL, p.SummaryShort, p.IntroShort,
		p.Impact, p.OriginalSourceURL, p.SectorID,
	).Scan(&p.ID)
	if err != nil {
		return translateWriteError("PROJECT_CREATE_FAILED", p, err)
	}
	return nil
}

// Update overwrites every column of project p.ID.
func (r *ProjectRepository) Update(ctx context.Context, p *catalog.Project) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE projects SET
			title = $2, feature_img_url = $3, summary_short = $4, intro_short = $5,
			impact = $6, original_source_url = $7, sector_id = $8
		WHERE id = $1
	`,
		p.ID, p.Title, p.FeatureImgURL, p.SummaryShort, p.IntroShort,
		p.Impact, p.OriginalSourceURL, p.SectorID,
	)
	if err != nil {
		return translateWriteError("PROJECT_UPDATE_FAILED", p, err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PROJECT_NOT_FOUND").With("project_id", p.ID).Wrap(catalog.ErrNotFound)
	}
	return nil
}

// Delete removes project id.
func (r *ProjectRepository) Delete(ctx context.Context, id int) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return oops.Code("PROJECT_DELETE_FAILED").With("project_id", id).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PROJECT_NOT_FOUND").With("project_id", id).Wrap(catalog.ErrNotFound)
	}
	return nil
}

func (r *ProjectRepository) query(ctx context.Context, op, sql string, args ...any) ([]catalog.Project, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code("PROJECT_QUERY_FAILED").With("operation", op).Wrap(err)
	}
	defer rows.Close()

	projects := []catalog.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, oops.Code("PROJECT_QUERY_FAILED").With("operation", op).Wrap(err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PROJECT_QUERY_FAILED").With("operation", op).Wrap(err)
	}
	return projects, nil
}

func scanProject(row pgx.Row) (*catalog.Project, error) {
	var (
		p catalog.Project
		s catalog.Sector
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.FeatureImgURL, &p.SummaryShort, &p.IntroShort,
		&p.Impact, &p.OriginalSourceURL, &p.SectorID, &s.ID, &s.Name,
	); err != nil {
		return nil, err
	}
	p.Sector = &s
	return &p, nil
}

func translateWriteError(code string, p *catalog.Project, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return oops.Code("PROJECT_UNKNOWN_SECTOR").With("sector_id", p.SectorID).Wrap(catalog.ErrUnknownSector)
	}
	return oops.Code(code).With("project_id", p.ID).Wrap(err)
}

// escapeLike makes % and _ in user input match literally.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// Compile-time interface check.
var _ catalog.ProjectRepository = (*ProjectRepository)(nil)
