// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package postgres implements auth.AccountRepository on PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/solhub/solhub/internal/auth"
	"github.com/solhub/solhub/internal/store"
)

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool store.Querier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool store.Querier) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create stores a new account. The unique index on identifier decides
// concurrent registrations.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	profileJSON, err := marshalProfile(account.Profile)
	if err != nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "marshal profile").
			Wrap(err)
	}
	historyJSON, err := marshalHistory(account.LoginHistory)
	if err != nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "marshal login history").
			Wrap(err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, identifier, password_hash, profile, login_history, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		account.ID.String(),
		account.Identifier,
		account.PasswordHash,
		profileJSON,
		historyJSON,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_DUPLICATE").
				With("identifier", account.Identifier).
				With("constraint", pgErr.ConstraintName).
				Wrap(auth.ErrDuplicateIdentifier)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("identifier", account.Identifier).
			Wrap(err)
	}
	return nil
}

// GetByIdentifier retrieves an account by its exact identifier.
func (r *AccountRepository) GetByIdentifier(ctx context.Context, identifier string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, identifier, password_hash, profile, login_history, created_at, updated_at
		FROM accounts
		WHERE identifier = $1
	`, identifier)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("identifier", identifier).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account by identifier").
			With("identifier", identifier).
			Wrap(err)
	}
	return account, nil
}

// ReplaceLoginHistory overwrites the stored login history in one UPDATE.
func (r *AccountRepository) ReplaceLoginHistory(ctx context.Context, identifier string, history []auth.LoginEvent) error {
	historyJSON, err := marshalHistory(history)
	if err != nil {
		return oops.Code("ACCOUNT_HISTORY_FAILED").
			With("operation", "marshal login history").
			Wrap(err)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET login_history = $2, updated_at = now()
		WHERE identifier = $1
	`, identifier, historyJSON)
	if err != nil {
		return oops.Code("ACCOUNT_HISTORY_FAILED").
			With("operation", "update login history").
			With("identifier", identifier).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("identifier", identifier).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		account     auth.Account
		idStr       string
		profileJSON []byte
		historyJSON []byte
	)

	if err := row.Scan(
		&idStr,
		&account.Identifier,
		&account.PasswordHash,
		&profileJSON,
		&historyJSON,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse account id").With("id", idStr).Wrap(err)
	}
	account.ID = id

	account.Profile = map[string]string{}
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &account.Profile); err != nil {
			return nil, oops.With("operation", "unmarshal profile").Wrap(err)
		}
	}

	account.LoginHistory = []auth.LoginEvent{}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &account.LoginHistory); err != nil {
			return nil, oops.With("operation", "unmarshal login history").Wrap(err)
		}
	}

	return &account, nil
}

func marshalProfile(profile map[string]string) ([]byte, error) {
	if profile == nil {
		profile = map[string]string{}
	}
	return json.Marshal(profile)
}

func marshalHistory(history []auth.LoginEvent) ([]byte, error) {
	if history == nil {
		history = []auth.LoginEvent{}
	}
	return json.Marshal(history)
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
