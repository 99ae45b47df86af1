package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	t.Run("Valid token", func(t *testing.T) {
		token, err := tm.GenerateAccessToken(12, "farmer@example.com", []Role{RoleFarmer})
		require.NoError(t, err)

		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int32(12), claims.UserID)
		assert.True(t, claims.HasRole(RoleFarmer))
		assert.False(t, claims.IsAdmin())
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, _ := NewTokenManager("another-secret-another-secret-xx", time.Hour).GenerateAccessToken(1, "", []Role{RoleAdmin})
		_, err := tm.ValidateToken(token)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := UserClaims{
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		_, err := tm.ValidateToken(token)
		assert.Equal(t, ErrExpiredToken, err)
	})

	t.Run("Missing user", func(t *testing.T) {
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{}).SignedString([]byte(testSecret))
		_, err := tm.ValidateToken(token)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-jwt")
		assert.Equal(t, ErrInvalidToken, err)
	})
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("Wrong issuer", func(t *testing.T) {
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
			UserID:           5,
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else", Audience: jwt.ClaimStrings{"api-access"}, ExpiresAt: exp},
		}).SignedString([]byte(testSecret))
		_, err := tm.ValidateToken(token)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("HS512", func(t *testing.T) {
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, UserClaims{
			UserID:           5,
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "agrirent-auth", Audience: jwt.ClaimStrings{"api-access"}, ExpiresAt: exp},
		}).SignedString([]byte(testSecret))
		_, err := tm.ValidateToken(token)
		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("Subject only", func(t *testing.T) {
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "42", Issuer: "agrirent-auth", Audience: jwt.ClaimStrings{"api-access"}, ExpiresAt: exp},
		}).SignedString([]byte(testSecret))
		claims, err := tm.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int32(42), claims.UserID)
	})
}
