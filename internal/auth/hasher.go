// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// argon2id parameters. Deliberately expensive: each call costs roughly
// argon2Memory KiB of working memory. Do not lower these to speed tests up;
// brute-force resistance is the point.
const (
	argon2Time    = 1    // iterations
	argon2Memory  = 6144 // KiB
	argon2Threads = 4    // parallelism
	argon2SaltLen = 16   // salt length in bytes
	argon2KeyLen  = 32   // output length in bytes
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces an argon2id hash of the password. Each call uses a
	// fresh random salt, so hashing the same password twice yields two
	// different encoded strings.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error
	// on a malformed hash. Fails closed: a hash that cannot be parsed
	// never verifies.
	Verify(password, hash string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// PHC string format: $argon2id$v=19$m=6144,t=1,p=4$<salt>$<hash>
	// The parameters and salt travel with the digest so verification is
	// self-describing.
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
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	if threads > 255 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d exceeds uint8 max", threads)
	}

	keyLen := len(expectedHash)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	// Recompute with the parameters embedded in the stored hash, not ours,
	// so records hashed under older cost settings still verify.
	computedHash := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	if subtle.ConstantTimeCompare(computedHash, expectedHash) == 1 {
		return true, nil
	}

	return false, nil
}

// GatedHasher wraps a PasswordHasher with a concurrency limit. Each argon2id
// invocation holds ~6 MiB; the gate bounds total memory under concurrent
// logins instead of letting every request hash at once.
type GatedHasher struct {
	inner PasswordHasher
	sem   *semaphore.Weighted
}

// NewGatedHasher wraps inner with a limit of maxConcurrent simultaneous
// hash or verify operations. maxConcurrent must be positive.
func NewGatedHasher(inner PasswordHasher, maxConcurrent int64) (*GatedHasher, error) {
	if inner == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("inner hasher is required")
	}
	if maxConcurrent <= 0 {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("maxConcurrent must be positive, got %d", maxConcurrent)
	}
	return &GatedHasher{
		inner: inner,
		sem:   semaphore.NewWeighted(maxConcurrent),
	}, nil
}

// Hash acquires a slot and delegates to the wrapped hasher.
func (g *GatedHasher) Hash(password string) (string, error) {
	// A login attempt runs to completion; no cancellation boundary here.
	if err := g.sem.Acquire(context.Background(), 1); err != nil {
		return "", oops.Code("AUTH_GATE_FAILED").Wrap(err)
	}
	defer g.sem.Release(1)
	return g.inner.Hash(password)
}

// Verify acquires a slot and delegates to the wrapped hasher.
func (g *GatedHasher) Verify(password, hash string) (bool, error) {
	if err := g.sem.Acquire(context.Background(), 1); err != nil {
		return false, oops.Code("AUTH_GATE_FAILED").Wrap(err)
	}
	defer g.sem.Release(1)
	return g.inner.Verify(password, hash)
}
