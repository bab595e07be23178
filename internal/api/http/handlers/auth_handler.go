package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/RorolRoro/tkg-site/internal/api/dto"
	"github.com/RorolRoro/tkg-site/internal/auth"
	"github.com/RorolRoro/tkg-site/internal/domain"
	"github.com/RorolRoro/tkg-site/internal/service"
	apperrors "github.com/RorolRoro/tkg-site/pkg/util"
)

// AuthHandler exposes the Discord OAuth login flow.
type AuthHandler struct {
	authService  *service.AuthService
	secureCookie bool
}

// NewAuthHandler constructs handler. secureCookie should be true outside
// development.
func NewAuthHandler(authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

// Login GET /auth/discord/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	url, err := h.authService.LoginURL(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginURLResponse{URL: url}})
}

// Callback GET /auth/discord/callback.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	token, principal, err := h.authService.HandleCallback(c.UserContext(), c.Query("code"), c.Query("state"))
	if err != nil {
		return err
	}
	c.Cookie(auth.SessionCookie(token, h.secureCookie))
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		Token:     token,
		Principal: principalResponse(principal),
	}})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := callerPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": principalResponse(principal)})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.authService.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	c.ClearCookie()
	return c.JSON(fiber.Map{"data": "logged out"})
}

func principalResponse(principal *domain.Principal) dto.PrincipalResponse {
	return dto.PrincipalResponse{
		DiscordID:   principal.DiscordID,
		Username:    principal.Username,
		DisplayName: principal.DisplayName,
		AvatarURL:   principal.AvatarURL,
		Role:        principal.Role,
	}
}
