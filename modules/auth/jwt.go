package auth

import (
	"errors"
	"time"

	domain "github.com/example/user-auth-service/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenMalformed is returned when a token cannot be decoded or parsed.
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrSignatureInvalid is returned when a token's signature does not
	// match the secret it is verified against.
	ErrSignatureInvalid = errors.New("token signature is invalid")
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenConfig holds the two signing secrets and token lifetimes.
// Access and refresh tokens are signed with independent secrets so that
// a compromise of one token class does not expose the other.
type TokenConfig struct {
	AccessSecret         string
	RefreshSecret        string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	Issuer               string
}

// DefaultTokenConfig returns the default token configuration.
// In production the secrets must be loaded from environment variables.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:         "access-secret-change-in-production",
		RefreshSecret:        "refresh-secret-change-in-production",
		AccessTokenDuration:  30 * time.Second,
		RefreshTokenDuration: 3 * 24 * time.Hour,
		Issuer:               "user-auth-service",
	}
}

// TokenClaims represents the custom claims embedded in both token kinds.
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Division  string `json:"division"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserClaims converts the token claims back to domain claims.
func (c *TokenClaims) UserClaims() domain.Claims {
	return domain.Claims{
		UserID:   c.UserID,
		Username: c.Username,
		Name:     c.Name,
		Division: c.Division,
	}
}

// TokenManager issues and verifies signed access and refresh tokens.
// Issuance and verification are pure computations with no side effects.
type TokenManager struct {
	config TokenConfig
}

// NewTokenManager creates a new TokenManager with the given configuration.
func NewTokenManager(config TokenConfig) *TokenManager {
	return &TokenManager{
		config: config,
	}
}

// IssueAccessToken signs the claims with the access secret. The token
// expires after the configured access lifetime.
func (m *TokenManager) IssueAccessToken(claims domain.Claims) (string, error) {
	return m.issueToken(claims, tokenTypeAccess, m.config.AccessSecret, m.config.AccessTokenDuration)
}

// IssueRefreshToken signs the claims with the refresh secret. The token
// expires after the configured refresh lifetime.
func (m *TokenManager) IssueRefreshToken(claims domain.Claims) (string, error) {
	return m.issueToken(claims, tokenTypeRefresh, m.config.RefreshSecret, m.config.RefreshTokenDuration)
}

// issueToken creates a signed HS256 token. A uuid jti keeps tokens minted
// within the same second from colliding.
func (m *TokenManager) issueToken(claims domain.Claims, tokenType, secret string, duration time.Duration) (string, error) {
	now := time.Now()
	tokenClaims := TokenClaims{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Name:      claims.Name,
		Division:  claims.Division,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    m.config.Issuer,
			Subject:   claims.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	return token.SignedString([]byte(secret))
}

// VerifyAccessToken checks an access token's signature and expiry against
// the access secret.
func (m *TokenManager) VerifyAccessToken(tokenString string) (*TokenClaims, error) {
	return m.verify(tokenString, tokenTypeAccess, m.config.AccessSecret)
}

// VerifyRefreshToken checks a refresh token's signature and expiry against
// the refresh secret.
func (m *TokenManager) VerifyRefreshToken(tokenString string) (*TokenClaims, error) {
	return m.verify(tokenString, tokenTypeRefresh, m.config.RefreshSecret)
}

// verify parses and validates a token, returning a tagged error: malformed
// input, expired timestamp, or a signature mismatch. A token presented as
// the wrong kind fails with ErrSignatureInvalid even when the signature
// itself would check out.
func (m *TokenManager) verify(tokenString, tokenType, secret string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.TokenType != tokenType {
		return nil, ErrSignatureInvalid
	}

	return claims, nil
}

// AccessTokenDuration returns the access token lifetime in seconds.
func (m *TokenManager) AccessTokenDuration() int64 {
	return int64(m.config.AccessTokenDuration.Seconds())
}

// RefreshTokenMaxAge returns the refresh token lifetime in seconds, which
// doubles as the cookie max-age.
func (m *TokenManager) RefreshTokenMaxAge() int64 {
	return int64(m.config.RefreshTokenDuration.Seconds())
}
