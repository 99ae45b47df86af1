package security

import (
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleAdmin  Role = "admin"
)

// UserClaims is the access-token payload issued by the identity service.
type UserClaims struct {
	UserID int32    `json:"user_id"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *UserClaims) HasRole(r Role) bool {
	return slices.Contains(c.Roles, string(r))
}

func (c *UserClaims) IsAdmin() bool { return c.HasRole(RoleAdmin) }

// TokenManager validates access tokens minted by the identity service. GenerateAccessToken
// mints the same shape for tooling and tests.
type TokenManager interface {
	GenerateAccessToken(userID int32, email string, roles []Role) (string, error)
	ValidateToken(tokenString string) (*UserClaims, error)
}

const (
	tokenIssuer   = "agrirent-auth"
	tokenAudience = "api-access"
	clockSkew     = 30 * time.Second
)

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithAudience(tokenAudience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

func (m *tokenManager) GenerateAccessToken(userID int32, email string, roles []Role) (string, error) {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, UserClaims{
		UserID: userID,
		Email:  email,
		Roles:  names,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(int(userID)),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}).SignedString(m.secret)
}

// ValidateToken accepts only HS256 tokens from the identity service that name a user,
// either in user_id or in the subject.
func (m *tokenManager) ValidateToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	_, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	}

	if claims.UserID == 0 {
		if uid, convErr := strconv.ParseInt(claims.Subject, 10, 32); convErr == nil {
			claims.UserID = int32(uid)
		}
	}
	if claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
