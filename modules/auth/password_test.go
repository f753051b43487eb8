package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/physiokit/physiokit/modules/auth"
)

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		hash, err := auth.HashPassword("correct-horse", 4)
		require.NoError(t, err)
		assert.NoError(t, auth.VerifyPassword(hash, "correct-horse"))
	})

	t.Run("mismatch maps to invalid credentials", func(t *testing.T) {
		t.Parallel()
		hash, err := auth.HashPassword("correct-horse", 4)
		require.NoError(t, err)
		assert.ErrorIs(t, auth.VerifyPassword(hash, "wrong"), auth.ErrInvalidCredentials)
	})

	t.Run("too short", func(t *testing.T) {
		t.Parallel()
		_, err := auth.HashPassword("short", 4)
		assert.ErrorIs(t, err, auth.ErrWeakPassword)
	})

	t.Run("hashes are salted", func(t *testing.T) {
		t.Parallel()
		a, err := auth.HashPassword("correct-horse", 4)
		require.NoError(t, err)
		b, err := auth.HashPassword("correct-horse", 4)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}
