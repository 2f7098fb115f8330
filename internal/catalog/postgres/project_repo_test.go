// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solhub/solhub/internal/catalog"
	"github.com/solhub/solhub/pkg/errutil"
)

var projectRowColumns = []string{
	"id", "title", "feature_img_url", "summary_short", "intro_short",
	"impact", "original_source_url", "sector_id", "id", "sector_name",
}

func TestProjectRepository_List(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      []catalog.Project
		errCode   string
	}{
		{
			name: "joins sectors",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT.+FROM projects p\s+JOIN sectors s`).
					WillReturnRows(pgxmock.NewRows(projectRowColumns).
						AddRow(1, "Solar Farms", "/img/solar.jpg", "sum", "intro", "high", "https://example.org", 2, 2, "Energy"))
			},
			want: []catalog.Project{{
				ID: 1, Title: "Solar Farms", FeatureImgURL: "/img/solar.jpg", SummaryShort: "sum",
				IntroShort: "intro", Impact: "high", OriginalSourceURL: "https://example.org",
				SectorID: 2, Sector: &catalog.Sector{ID: 2, Name: "Energy"},
			}},
		},
		{
			name: "empty table",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT.+FROM projects`).
					WillReturnRows(pgxmock.NewRows(projectRowColumns))
			},
			want: []catalog.Project{},
		},
		{
			name: "query error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT.+FROM projects`).
					WillReturnError(errors.New("connection refused"))
			},
			errCode: "PROJECT_QUERY_FAILED",
		},
		{
			name: "rows error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT.+FROM projects`).
					WillReturnRows(pgxmock.NewRows(projectRowColumns).
						AddRow(1, "a", "", "", "", "", "", 1, 1, "Energy").
						RowError(0, errors.New("row error")))
			},
			errCode: "PROJECT_QUERY_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			got, err := NewProjectRepository(mock).List(context.Background())
			if tt.errCode != "" {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.errCode)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProjectRepository_ListBySectorName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE s.sector_name ILIKE`).
		WithArgs(`100\%`).
		WillReturnRows(pgxmock.NewRows(projectRowColumns))

	got, err := NewProjectRepository(mock).ListBySectorName(context.Background(), "100%")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`WHERE p.id = \$1`).
			WithArgs(7).
			WillReturnRows(pgxmock.NewRows(projectRowColumns).
				AddRow(7, "Composting", "", "", "", "", "", 3, 3, "Food"))

		p, err := NewProjectRepository(mock).Get(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, "Composting", p.Title)
		assert.Equal(t, "Food", p.Sector.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`WHERE p.id = \$1`).
			WithArgs(7).
			WillReturnRows(pgxmock.NewRows(projectRowColumns))

		_, err = NewProjectRepository(mock).Get(context.Background(), 7)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
		errutil.AssertErrorCode(t, err, "PROJECT_NOT_FOUND")
	})
}

func TestProjectRepository_Create(t *testing.T) {
	project := func() *catalog.Project {
		return &catalog.Project{Title: "Heat Pumps", SectorID: 2, Impact: "medium"}
	}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    int
		wantErr   error
		errCode   string
	}{
		{
			name: "returns new id",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO projects`).
					WithArgs("Heat Pumps", "", "", "", "medium", "", 2).
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(12))
			},
			wantID: 12,
		},
		{
			name: "foreign key violation is unknown sector",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO projects`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
			},
			wantErr: catalog.ErrUnknownSector,
			errCode: "PROJECT_UNKNOWN_SECTOR",
		},
		{
			name: "other error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO projects`).
					WillReturnError(errors.New("disk full"))
			},
			errCode: "PROJECT_CREATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)
			p := project()
			err = NewProjectRepository(mock).Create(context.Background(), p)

			if tt.errCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, p.ID)
			} else {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.errCode)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProjectRepository_UpdateAndDelete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		run       func(r *ProjectRepository) error
		wantErr   error
	}{
		{
			name: "update",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE projects SET`).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			run: func(r *ProjectRepository) error {
				return r.Update(context.Background(), &catalog.Project{ID: 3, Title: "x", SectorID: 1})
			},
		},
		{
			name: "update missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE projects SET`).WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			run: func(r *ProjectRepository) error {
				return r.Update(context.Background(), &catalog.Project{ID: 3, Title: "x", SectorID: 1})
			},
			wantErr: catalog.ErrNotFound,
		},
		{
			name: "update bad sector",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE projects SET`).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
			},
			run: func(r *ProjectRepository) error {
				return r.Update(context.Background(), &catalog.Project{ID: 3, Title: "x", SectorID: 99})
			},
			wantErr: catalog.ErrUnknownSector,
		},
		{
			name: "delete",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM projects`).WithArgs(3).WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
			run: func(r *ProjectRepository) error { return r.Delete(context.Background(), 3) },
		},
		{
			name: "delete missing",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM projects`).WithArgs(3).WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			run:     func(r *ProjectRepository) error { return r.Delete(context.Background(), 3) },
			wantErr: catalog.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)
			err = tt.run(NewProjectRepository(mock))
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "energy", escapeLike("energy"))
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}
