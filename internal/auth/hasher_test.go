// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Billfold Contributors

package auth_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfold/billfold/internal/auth"
)

func TestHashPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("produces valid hash", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("encodes the cost parameters", func(t *testing.T) {
		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.Contains(t, hash, "$m=6144,t=1,p=4$")
	})

	t.Run("different passwords produce different hashes", func(t *testing.T) {
		hash1, err := hasher.Hash("password1")
		require.NoError(t, err)
		hash2, err := hasher.Hash("password2")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		hash1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		hash2, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, err := hasher.Hash("")
		assert.Error(t, err)
	})
}

func TestVerifyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	t.Run("correct password verifies", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("correctpassword", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		hash, err := hasher.Hash("correctpassword")
		require.NoError(t, err)

		ok, err := hasher.Verify("wrongpassword", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalid hash format returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "not-a-valid-hash")
		assert.Error(t, err)
	})

	t.Run("wrong algorithm returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2i$v=19$m=6144,t=1,p=4$c2FsdA$aGFzaA")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported hash algorithm")
	})

	t.Run("invalid version format returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2id$vXX$m=6144,t=1,p=4$c2FsdA$aGFzaA")
		assert.Error(t, err)
	})

	t.Run("invalid parameters format returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2id$v=19$invalid$c2FsdA$aGFzaA")
		assert.Error(t, err)
	})

	t.Run("invalid salt base64 returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2id$v=19$m=6144,t=1,p=4$!!!invalid!!!$aGFzaA")
		assert.Error(t, err)
	})

	t.Run("invalid hash base64 returns error", func(t *testing.T) {
		_, err := hasher.Verify("password", "$argon2id$v=19$m=6144,t=1,p=4$c2FsdA$!!!invalid!!!")
		assert.Error(t, err)
	})

	t.Run("threads overflow returns error", func(t *testing.T) {
		// threads=256 exceeds uint8 max (255)
		_, err := hasher.Verify("password", "$argon2id$v=19$m=6144,t=1,p=256$c2FsdA$aGFzaA")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "threads value")
	})

	t.Run("foreign cost parameters are accepted", func(t *testing.T) {
		// A record hashed under different cost settings is recomputed with
		// those settings; a wrong password is a mismatch, not an error.
		foreign := "$argon2id$v=19$m=8,t=1,p=1$" +
			"AAAAAAAAAAAAAAAAAAAAAA$" +
			"Yr5zBVhuAjU9ReGWvDxMcENFlPWumiOXBaDLm1TPr6Y"
		ok, err := hasher.Verify("password123", foreign)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestGatedHasher(t *testing.T) {
	t.Run("rejects nil inner hasher", func(t *testing.T) {
		_, err := auth.NewGatedHasher(nil, 4)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		_, err := auth.NewGatedHasher(auth.NewArgon2idHasher(), 0)
		assert.Error(t, err)
	})

	t.Run("delegates hash and verify", func(t *testing.T) {
		gated, err := auth.NewGatedHasher(auth.NewArgon2idHasher(), 2)
		require.NoError(t, err)

		hash, err := gated.Hash("password123")
		require.NoError(t, err)

		ok, err := gated.Verify("password123", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("survives concurrent use", func(t *testing.T) {
		gated, err := auth.NewGatedHasher(auth.NewArgon2idHasher(), 2)
		require.NoError(t, err)

		hash, err := gated.Hash("password123")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, verifyErr := gated.Verify("password123", hash)
				assert.NoError(t, verifyErr)
				assert.True(t, ok)
			}()
		}
		wg.Wait()
	})
}
