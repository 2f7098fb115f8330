// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package authtest

import (
	"errors"
	"strings"

	"github.com/solhub/solhub/internal/auth"
)

const plainPrefix = "plain$"

// PlainHasher is a reversible PasswordHasher for tests that exercise
// flows rather than cryptography. Never use it outside tests.
type PlainHasher struct{}

// Hash implements auth.PasswordHasher.
func (PlainHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", &auth.HashingError{Err: auth.ErrEmptyPassword}
	}
	return plainPrefix + password, nil
}

// Verify implements auth.PasswordHasher.
func (PlainHasher) Verify(password, hash string) (bool, error) {
	stored, ok := strings.CutPrefix(hash, plainPrefix)
	if !ok {
		return false, &auth.HashingError{Err: errors.New("not a plain hash")}
	}
	return stored == password, nil
}

var _ auth.PasswordHasher = PlainHasher{}
