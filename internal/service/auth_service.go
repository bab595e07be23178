package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/RorolRoro/tkg-site/internal/auth"
	"github.com/RorolRoro/tkg-site/internal/config"
	"github.com/RorolRoro/tkg-site/internal/discord"
	"github.com/RorolRoro/tkg-site/internal/domain"
	"github.com/RorolRoro/tkg-site/internal/persistence"
	"github.com/RorolRoro/tkg-site/internal/policy"
	apperrors "github.com/RorolRoro/tkg-site/pkg/util"
)

const (
	oauthStateTTL    = 10 * time.Minute
	oauthStatePrefix = "oauth_state:"
	revokedKeyPrefix = "session_revoked:"
	identifyScope    = "identify"
	emailScope       = "email"
)

// discordEndpoint is Discord's OAuth2 endpoint.
var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// AuthService runs the Discord OAuth login flow and manages session tokens.
type AuthService struct {
	oauth  *oauth2.Config
	guild  *discord.Client
	tokens *auth.TokenManager
	store  *persistence.Redis
	policy *policy.Policy
	logger *zap.Logger
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.Config, guild *discord.Client, store *persistence.Redis, p *policy.Policy, logger *zap.Logger) *AuthService {
	return &AuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.Discord.ClientID,
			ClientSecret: cfg.Discord.ClientSecret,
			RedirectURL:  cfg.Discord.RedirectURL,
			Scopes:       []string{identifyScope, emailScope},
			Endpoint:     discordEndpoint,
		},
		guild:  guild,
		tokens: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		store:  store,
		policy: p,
		logger: logger,
	}
}

// TokenManager exposes the session token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// LoginURL creates a state nonce and returns the Discord authorization URL.
func (s *AuthService) LoginURL(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.store.SetEx(ctx, oauthStatePrefix+state, "1", oauthStateTTL); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return s.oauth.AuthCodeURL(state), nil
}

// HandleCallback completes the OAuth flow: validates the state nonce,
// exchanges the code, resolves the Discord identity and guild roles, and
// mints a session token.
func (s *AuthService) HandleCallback(ctx context.Context, code, state string) (string, *domain.Principal, error) {
	if code == "" || state == "" {
		return "", nil, apperrors.NewValidationError("code and state required", nil)
	}
	if _, err := s.store.GetDel(ctx, oauthStatePrefix+state); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil, apperrors.NewUnauthorized("unknown or expired oauth state")
		}
		return "", nil, apperrors.NewInternalError(err)
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", nil, apperrors.NewUpstreamUnavailable("discord token exchange failed", err)
	}

	identity, err := discord.FetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return "", nil, apperrors.NewUpstreamUnavailable("discord identity fetch failed", err)
	}

	principal := &domain.Principal{
		DiscordID:   identity.ID,
		Username:    identity.Username,
		DisplayName: identity.GlobalName,
		Email:       identity.Email,
		AvatarURL:   identity.AvatarURL("128"),
		Role:        s.resolveCoarseRole(ctx, identity.ID),
	}
	if principal.DisplayName == "" {
		principal.DisplayName = identity.Username
	}

	signed, _, err := s.tokens.GenerateToken(principal)
	if err != nil {
		return "", nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("login completed",
		zap.String("discord_id", principal.DiscordID),
		zap.String("role", string(principal.Role)))
	return signed, principal, nil
}

// Logout revokes the session token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.store.SetEx(ctx, revokedKeyPrefix+claims.ID, "1", ttl); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// IsRevoked implements auth.TokenRevoker.
func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.store.Exists(ctx, revokedKeyPrefix+tokenID)
}

// resolveCoarseRole maps the caller's guild roles onto the coarse role. A
// user outside the guild, or an unreachable guild API, resolves to PLAYER:
// login must not fail because role resolution did.
func (s *AuthService) resolveCoarseRole(ctx context.Context, discordID string) domain.CoarseRole {
	if s.guild == nil {
		return domain.RolePlayer
	}
	member, err := s.guild.Member(ctx, discordID)
	if err != nil {
		s.logger.Warn("guild member lookup failed, defaulting to PLAYER",
			zap.String("discord_id", discordID), zap.Error(err))
		return domain.RolePlayer
	}
	return roleFromGuildRoles(member, s.policy)
}

func roleFromGuildRoles(member *discordgo.Member, p *policy.Policy) domain.CoarseRole {
	held := make(map[string]struct{}, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = struct{}{}
	}
	for _, id := range p.AdminRoleIDs {
		if _, ok := held[id]; ok {
			return domain.RoleAdmin
		}
	}
	for _, id := range p.StaffRoleIDs {
		if _, ok := held[id]; ok {
			return domain.RoleStaff
		}
	}
	return domain.RolePlayer
}
