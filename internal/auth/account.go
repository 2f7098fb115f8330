// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package auth

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxIdentifierLength bounds the identifier column.
const MaxIdentifierLength = 64

// Account is the stored credential record for one user.
// Identifiers are case-sensitive: "alice" and "Alice" are distinct accounts.
type Account struct {
	ID           ulid.ULID
	Identifier   string
	PasswordHash string
	Profile      map[string]string
	LoginHistory []LoginEvent
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LoginEvent records one successful authentication.
type LoginEvent struct {
	Timestamp  time.Time `json:"dateTime"`
	AgentLabel string    `json:"userAgent"`
}

// User is the sanitized view of an Account. It is safe to store in a
// session or render in a template.
type User struct {
	Identifier   string            `json:"userName"`
	Profile      map[string]string `json:"profile,omitempty"`
	LoginHistory []LoginEvent      `json:"loginHistory"`
}

// Email returns the "email" profile field, if any.
func (u *User) Email() string {
	return u.Profile["email"]
}

// NewAccount builds an Account for a freshly hashed password.
// The profile is copied and the login history starts empty.
func NewAccount(identifier, passwordHash string, profile map[string]string) (*Account, error) {
	if err := ValidateIdentifier(identifier); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &Account{
		ID:           ulid.Make(),
		Identifier:   identifier,
		PasswordHash: passwordHash,
		Profile:      cloneProfile(profile),
		LoginHistory: []LoginEvent{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateIdentifier rejects identifiers that are blank or too long.
// Surrounding whitespace counts toward blankness only; the identifier is
// stored exactly as given.
func ValidateIdentifier(identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return oops.Code(CodeInvalidIdentifier).Wrap(ErrInvalidIdentifier)
	}
	if len(identifier) > MaxIdentifierLength {
		return oops.Code(CodeInvalidIdentifier).
			With("length", len(identifier)).
			With("max", MaxIdentifierLength).
			Wrapf(ErrInvalidIdentifier, "identifier too long")
	}
	return nil
}

// User returns the sanitized view of the account.
func (a *Account) User() *User {
	return &User{
		Identifier:   a.Identifier,
		Profile:      cloneProfile(a.Profile),
		LoginHistory: append([]LoginEvent{}, a.LoginHistory...),
	}
}

// LogValue implements slog.LogValuer so an Account never leaks its hash
// into logs.
func (a *Account) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID.String()),
		slog.String("identifier", a.Identifier),
		slog.String("password_hash", "[REDACTED]"),
		slog.Int("logins", len(a.LoginHistory)),
	)
}

func cloneProfile(p map[string]string) map[string]string {
	if p == nil {
		return map[string]string{}
	}
	return maps.Clone(p)
}

// AccountRepository persists accounts.
type AccountRepository interface {
	// Create stores a new account. Returns an error matching
	// ErrDuplicateIdentifier when the identifier is already taken.
	Create(ctx context.Context, account *Account) error

	// GetByIdentifier returns a fresh copy of the account.
	// Returns an error matching ErrNotFound when absent.
	GetByIdentifier(ctx context.Context, identifier string) (*Account, error)

	// ReplaceLoginHistory overwrites the stored history in one write.
	// Returns an error matching ErrNotFound when no account matched.
	ReplaceLoginHistory(ctx context.Context, identifier string, history []LoginEvent) error
}
