package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAdminJWT(t *testing.T) {
	key := []byte("secret")

	t.Run("valid", func(t *testing.T) {
		token, err := GenerateAdminJWT(7, "root", time.Minute, key)
		require.NoError(t, err)

		claims, validErr := ValidateAdminJWT(token, key)
		require.NoError(t, validErr)
		require.Equal(t, int64(7), claims.ID)
		require.Equal(t, "root", claims.Username)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateAdminJWT(7, "root", -time.Minute, key)
		require.NoError(t, err)

		_, validErr := ValidateAdminJWT(token, key)
		require.ErrorIs(t, validErr, ErrTokenExpired)
	})

	t.Run("wrong key", func(t *testing.T) {
		token, err := GenerateAdminJWT(7, "root", time.Minute, key)
		require.NoError(t, err)

		_, validErr := ValidateAdminJWT(token, []byte("other"))
		require.Error(t, validErr)
		require.NotErrorIs(t, validErr, ErrTokenExpired)
	})
}
