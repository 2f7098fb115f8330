// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package authtest

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/solhub/solhub/internal/auth"
)

// MemoryAccountRepository is an in-memory auth.AccountRepository.
// It hands out copies so callers never share state with the store.
type MemoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]auth.Account
}

// NewMemoryAccountRepository creates an empty repository.
func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[string]auth.Account)}
}

// Create stores a copy of account.
func (r *MemoryAccountRepository) Create(_ context.Context, account *auth.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.Identifier]; ok {
		return oops.Code("ACCOUNT_DUPLICATE").
			With("identifier", account.Identifier).
			Wrap(auth.ErrDuplicateIdentifier)
	}
	r.accounts[account.Identifier] = copyAccount(*account)
	return nil
}

// GetByIdentifier returns a copy of the stored account.
func (r *MemoryAccountRepository) GetByIdentifier(_ context.Context, identifier string) (*auth.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[identifier]
	if !ok {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("identifier", identifier).
			Wrap(auth.ErrNotFound)
	}
	out := copyAccount(account)
	return &out, nil
}

// ReplaceLoginHistory overwrites the stored history.
func (r *MemoryAccountRepository) ReplaceLoginHistory(_ context.Context, identifier string, history []auth.LoginEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[identifier]
	if !ok {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("identifier", identifier).
			Wrap(auth.ErrNotFound)
	}
	account.LoginHistory = append([]auth.LoginEvent{}, history...)
	account.UpdatedAt = time.Now().UTC()
	r.accounts[identifier] = account
	return nil
}

// Len returns the number of stored accounts.
func (r *MemoryAccountRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.accounts)
}

func copyAccount(a auth.Account) auth.Account {
	a.Profile = maps.Clone(a.Profile)
	a.LoginHistory = append([]auth.LoginEvent{}, a.LoginHistory...)
	return a
}

var _ auth.AccountRepository = (*MemoryAccountRepository)(nil)
