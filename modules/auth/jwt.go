package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domain "github.com/example/storefront/domain/user"
)

var (
	// ErrInvalidToken is returned when the token signature or shape is invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// JWTConfig holds JWT configuration. The secret and TTL are process-wide,
// read-only after startup, and must match across all backend instances.
type JWTConfig struct {
	SecretKey string
	TokenTTL  time.Duration
	Issuer    string
}

// DefaultJWTConfig returns a default JWT configuration.
// In production, the secret key must be loaded from the environment.
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey: "change-me-in-production",
		TokenTTL:  time.Hour,
		Issuer:    "storefront",
	}
}

// JWTClaims is the claim set embedded in every issued token: the minimal
// identity needed to render the UI without a follow-up lookup.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies signed bearer tokens. Tokens are
// self-contained: validity is solely a function of signature and expiry,
// and there is no server-side session table or revocation list.
type JWTManager struct {
	config JWTConfig
}

// NewJWTManager creates a new JWTManager with the given configuration.
func NewJWTManager(config JWTConfig) *JWTManager {
	if config.TokenTTL <= 0 {
		config.TokenTTL = time.Hour
	}
	return &JWTManager{config: config}
}

// GenerateToken issues a signed token carrying the user's identity snapshot,
// expiring TokenTTL from now.
func (m *JWTManager) GenerateToken(userID, email, name string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

// ValidateToken verifies the token signature and expiry and returns the
// embedded claims. Expiry is reported as ErrExpiredToken; every other
// failure collapses to ErrInvalidToken.
func (m *JWTManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.config.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Identity converts the token claims to the domain claim set.
func (c *JWTClaims) Identity() *domain.Claims {
	return &domain.Claims{
		UserID: c.UserID,
		Email:  c.Email,
		Name:   c.Name,
	}
}

// TokenTTL returns the configured token lifetime in seconds.
func (m *JWTManager) TokenTTL() int64 {
	return int64(m.config.TokenTTL.Seconds())
}
