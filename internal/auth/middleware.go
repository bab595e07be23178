package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/RorolRoro/tkg-site/internal/domain"
	apperrors "github.com/RorolRoro/tkg-site/pkg/util"
)

const (
	principalKey  = "auth_principal"
	claimsKey     = "auth_claims"
	sessionCookie = "tkg_session"
)

// TokenRevoker answers whether a session token ID has been revoked. A nil
// revoker disables the check.
type TokenRevoker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware validates session tokens and loads the principal.
type AuthMiddleware struct {
	tokens  *TokenManager
	revoker TokenRevoker
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, revoker TokenRevoker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, revoker: revoker}
}

// Handle enforces authentication for protected routes. The token is read
// from the Authorization header or, for browser navigation, the session
// cookie.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		tokenStr = c.Cookies(sessionCookie)
	}
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing session token")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid session token")
	}

	if m.revoker != nil {
		revoked, err := m.revoker.IsRevoked(c.UserContext(), claims.ID)
		if err == nil && revoked {
			return apperrors.NewUnauthorized("session revoked")
		}
	}

	c.Locals(principalKey, claims.Principal())
	c.Locals(claimsKey, claims)
	return c.Next()
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}

// ClaimsFromContext retrieves the raw token claims, needed for logout.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}

// SessionCookie builds the browser session cookie for a signed token.
func SessionCookie(token string, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
