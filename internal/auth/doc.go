// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package auth provides account registration, authentication, and the
// bounded login history kept for every account.
//
// # Domain Types
//
//   - Account - the stored credential record (identifier, password hash,
//     profile, login history)
//   - LoginEvent - one successful authentication
//   - User - the sanitized view of an Account handed to callers; it never
//     carries the password hash
//
// Accounts are created only through Service.Register and mutated only
// through AccountRepository.ReplaceLoginHistory.
//
// # Services
//
// Service exposes the two entry points:
//   - Register - validates input, hashes the password, creates the account
//   - Authenticate - looks the account up, verifies the password, and
//     records the login before returning a User
//
// Service never logs and never retries. Every failure is returned as one of
// the error kinds declared in errors.go; match them with errors.Is.
package auth
