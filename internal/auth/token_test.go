package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/RorolRoro/tkg-site/internal/domain"
)

func testPrincipal() *domain.Principal {
	return &domain.Principal{
		DiscordID:   "100000000000000042",
		Username:    "aldric_rp",
		DisplayName: "Aldric",
		Email:       "aldric@example.org",
		AvatarURL:   "https://cdn.discordapp.com/avatars/42/abc.png",
		Role:        domain.RoleStaff,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	principal := testPrincipal()

	tokenStr, expiresAt, err := tm.GenerateToken(principal)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(tokenStr)
	require.NoError(t, err)
	require.Equal(t, principal.DiscordID, claims.DiscordID)
	require.Equal(t, principal.Role, claims.Role)
	require.NotEmpty(t, claims.ID, "token must carry an id for revocation")

	require.Equal(t, principal, claims.Principal())
}

func TestParseTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 60)
	tokenStr, _, err := tm.GenerateToken(testPrincipal())
	require.NoError(t, err)

	other := NewTokenManager("secret-b", 60)
	_, err = other.ParseToken(tokenStr)
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}
	tokenStr, _, err := tm.GenerateToken(testPrincipal())
	require.NoError(t, err)

	_, err = tm.ParseToken(tokenStr)
	require.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	_, err := tm.ParseToken("not.a.jwt")
	require.Error(t, err)
}

func TestTTLFallback(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	_, expiresAt, err := tm.GenerateToken(testPrincipal())
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(720*time.Minute), expiresAt, 5*time.Second)
}
