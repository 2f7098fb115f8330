// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package auth

import (
	"errors"

	"github.com/samber/oops"
)

// Repository-level sentinels. Implementations of AccountRepository must
// return errors matching these with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateIdentifier is returned by Create when the identifier is
	// already registered.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
)

// Error kinds returned by Service.
var (
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrInvalidIdentifier = errors.New("identifier is required")
	ErrHashingFailed     = errors.New("password could not be hashed")
	ErrIdentifierTaken   = errors.New("identifier already taken")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrStore             = errors.New("credential store failure")
	ErrHashing           = errors.New("password hash failure")
)

// Error codes attached to the oops errors returned by Service.
const (
	CodePasswordMismatch  = "AUTH_PASSWORD_MISMATCH"
	CodeInvalidIdentifier = "AUTH_INVALID_IDENTIFIER"
	CodeHashingFailed     = "AUTH_HASHING_FAILED"
	CodeIdentifierTaken   = "AUTH_IDENTIFIER_TAKEN"
	CodeUserNotFound      = "AUTH_USER_NOT_FOUND"
	CodeIncorrectPassword = "AUTH_INCORRECT_PASSWORD"
	CodeStoreError        = "AUTH_STORE_ERROR"
	CodeHashingError      = "AUTH_HASHING_ERROR"
)

// StoreError reports a credential store failure. The underlying cause stays
// in the chain for diagnostics.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "credential store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStore.
func (e *StoreError) Is(target error) bool { return target == ErrStore }

// HashingError reports a failure of the hashing primitive or a malformed
// hash token.
type HashingError struct {
	Err error
}

func (e *HashingError) Error() string {
	return "password hash: " + e.Err.Error()
}

func (e *HashingError) Unwrap() error { return e.Err }

// Is reports whether target is ErrHashing.
func (e *HashingError) Is(target error) bool { return target == ErrHashing }

func storeError(op string, err error) error {
	return oops.Code(CodeStoreError).
		With("operation", op).
		Wrap(&StoreError{Op: op, Err: err})
}

func hashingError(code string, err error) error {
	return oops.Code(code).Wrap(&HashingError{Err: err})
}
