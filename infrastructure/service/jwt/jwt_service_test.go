package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixora/oauth-service/application/port/outbound"
)

func TestJWTService(t *testing.T) {
	service, err := NewJWTService("test-secret")
	require.NoError(t, err)

	t.Run("RoundTrip", func(t *testing.T) {
		for _, uid := range []int64{1, 42, 1 << 40} {
			token, err := service.Sign(uid, 15*time.Minute)
			require.NoError(t, err)

			claims, err := service.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, uid, claims.UserID)
			assert.NotEmpty(t, claims.TokenID)
			assert.WithinDuration(t, claims.IssuedAt.Add(15*time.Minute), claims.ExpiresAt, time.Second)
		}
	})

	t.Run("TokensAreUnique", func(t *testing.T) {
		a, err := service.Sign(1, time.Hour)
		require.NoError(t, err)
		b, err := service.Sign(1, time.Hour)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("RejectsNonPositiveTTL", func(t *testing.T) {
		_, err := service.Sign(1, 0)
		assert.Error(t, err)
	})

	t.Run("ValidateInvalidToken", func(t *testing.T) {
		_, err := service.Verify("invalid-token")
		assert.ErrorIs(t, err, outbound.ErrTokenSignatureInvalid)
	})

	t.Run("ValidateTamperedToken", func(t *testing.T) {
		token, err := service.Sign(1, time.Hour)
		require.NoError(t, err)
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		other, err := service.Sign(2, time.Hour)
		require.NoError(t, err)
		// payload of another token under this token's signature
		tampered := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

		_, err = service.Verify(tampered)
		assert.ErrorIs(t, err, outbound.ErrTokenSignatureInvalid)
	})

	t.Run("ValidateForeignSecret", func(t *testing.T) {
		foreign, err := NewJWTService("other-secret")
		require.NoError(t, err)
		token, err := foreign.Sign(1, time.Hour)
		require.NoError(t, err)

		_, err = service.Verify(token)
		assert.ErrorIs(t, err, outbound.ErrTokenSignatureInvalid)
	})

	t.Run("ValidateNoneAlgorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"user_id": 1,
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.Verify(token)
		assert.ErrorIs(t, err, outbound.ErrTokenSignatureInvalid)
	})

	t.Run("ValidateMissingExpiry", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = service.Verify(signed)
		assert.ErrorIs(t, err, outbound.ErrTokenSignatureInvalid)
	})

	t.Run("ValidateExpiredToken", func(t *testing.T) {
		issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		signer := service.WithClock(func() time.Time { return issued })
		token, err := signer.Sign(7, 15*time.Minute)
		require.NoError(t, err)

		before := service.WithClock(func() time.Time { return issued.Add(14 * time.Minute) })
		claims, err := before.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)

		after := service.WithClock(func() time.Time { return issued.Add(16 * time.Minute) })
		_, err = after.Verify(token)
		assert.ErrorIs(t, err, outbound.ErrTokenExpired)
	})
}

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService("")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
