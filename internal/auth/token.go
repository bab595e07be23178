package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

// TokenManager handles issuing and validating JWT session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 720
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes the session JWT payload. The Discord identity is carried
// in full so request handling never needs an upstream lookup.
type Claims struct {
	DiscordID   string            `json:"sub"`
	Username    string            `json:"username"`
	DisplayName string            `json:"display_name"`
	Email       string            `json:"email,omitempty"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Role        domain.CoarseRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the principal. The token ID is
// used for revocation on logout.
func (tm *TokenManager) GenerateToken(principal *domain.Principal) (string, time.Time, error) {
	expiresAt := time.Now().Add(tm.ttl)
	claims := &Claims{
		DiscordID:   principal.DiscordID,
		Username:    principal.Username,
		DisplayName: principal.DisplayName,
		Email:       principal.Email,
		AvatarURL:   principal.AvatarURL,
		Role:        principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.DiscordID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Principal maps the claims back onto the domain principal.
func (c *Claims) Principal() *domain.Principal {
	return &domain.Principal{
		DiscordID:   c.DiscordID,
		Username:    c.Username,
		DisplayName: c.DisplayName,
		Email:       c.Email,
		AvatarURL:   c.AvatarURL,
		Role:        c.Role,
	}
}
