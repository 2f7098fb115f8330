// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// Bounds on parameters read back from a stored token.
const (
	maxArgon2Memory  = 1 << 21 // KiB, 2 GiB
	maxArgon2Time    = 16
	minArgon2SaltLen = 8
	maxArgon2KeyLen  = 1024
)

// ErrEmptyPassword is the cause of the HashingError returned when hashing
// an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted one-way hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id. It also verifies
// bcrypt hashes carried over from the previous deployment.
type Argon2idHasher struct {
	rand io.Reader
}

// HasherOption configures an Argon2idHasher.
type HasherOption func(*Argon2idHasher)

// WithRandSource replaces the salt source.
func WithRandSource(r io.Reader) HasherOption {
	return func(h *Argon2idHasher) { h.rand = r }
}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher(opts ...HasherOption) *Argon2idHasher {
	h := &Argon2idHasher{rand: rand.Reader}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", hashingError(CodeHashingError, ErrEmptyPassword)
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", hashingError(CodeHashingError, fmt.Errorf("generate salt: %w", err))
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify checks if the password matches the hash.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	if isBcrypt(encodedHash) {
		return verifyBcrypt(password, encodedHash)
	}

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, invalidHash(errors.New("invalid hash format"))
	}

	if parts[1] != "argon2id" {
		return false, invalidHash(fmt.Errorf("unsupported hash algorithm: %s", parts[1]))
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, invalidHash(err)
	}
	if version != argon2.Version {
		return false, invalidHash(fmt.Errorf("unsupported argon2 version: %d", version))
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, invalidHash(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, invalidHash(err)
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, invalidHash(err)
	}

	// argon2 takes threads as uint8
	if threads == 0 || threads > 255 {
		return false, invalidHash(fmt.Errorf("threads value %d out of range", threads))
	}
	if time == 0 || time > maxArgon2Time {
		return false, invalidHash(fmt.Errorf("iterations %d out of range", time))
	}
	if memory < 8*threads || memory > maxArgon2Memory {
		return false, invalidHash(fmt.Errorf("memory %d KiB out of range", memory))
	}
	if len(salt) < minArgon2SaltLen {
		return false, invalidHash(fmt.Errorf("salt length %d too short", len(salt)))
	}

	keyLen := len(expectedHash)
	if keyLen <= 0 || keyLen > maxArgon2KeyLen {
		return false, invalidHash(fmt.Errorf("invalid hash key length: %d", keyLen))
	}

	computedHash := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	if subtle.ConstantTimeCompare(computedHash, expectedHash) == 1 {
		return true, nil
	}

	return false, nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

func verifyBcrypt(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, invalidHash(err)
	}
}

func invalidHash(err error) error {
	return hashingError(CodeHashingError, err)
}

var _ PasswordHasher = (*Argon2idHasher)(nil)
