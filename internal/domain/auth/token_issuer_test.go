package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/rencard-user/pkg/errors"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		Secret:              []byte("0123456789abcdef0123456789abcdef"),
		Issuer:              "rencard",
		Audience:            "rencard-clients",
		AccessTokenLifetime: 15 * time.Minute,
	}
}

func newTestIssuer(t *testing.T, cfg TokenConfig) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(cfg)
	require.NoError(t, err)
	return issuer
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, testTokenConfig())

	token, err := issuer.IssueAccessToken("user-1", map[string]any{"role": "member", "sub": "intruder"})
	require.NoError(t, err)

	claims, err := issuer.ParseAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "member", claims.Extra["role"])
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt, time.Minute)
}

func TestTokenIssuer_RejectsAlteredConfig(t *testing.T) {
	token, err := newTestIssuer(t, testTokenConfig()).IssueAccessToken("user-1", nil)
	require.NoError(t, err)

	alterations := map[string]func(*TokenConfig){
		"secret":   func(c *TokenConfig) { c.Secret = []byte("another-secret-another-secret!!") },
		"issuer":   func(c *TokenConfig) { c.Issuer = "someone-else" },
		"audience": func(c *TokenConfig) { c.Audience = "other-clients" },
	}
	for name, alter := range alterations {
		t.Run(name, func(t *testing.T) {
			cfg := testTokenConfig()
			alter(&cfg)
			_, err := newTestIssuer(t, cfg).ParseAccessToken(token)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, "invalid_token"))
		})
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := newTestIssuer(t, testTokenConfig())
	issued := time.Now().Add(-time.Hour)
	issuer.now = func() time.Time { return issued }
	token, err := issuer.IssueAccessToken("user-1", nil)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ParseAccessToken(token)
	require.Error(t, err)
	require.Contains(t, err.Error(), "token expired")
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer := newTestIssuer(t, testTokenConfig())
	_, err := issuer.ParseAccessToken("")
	require.Error(t, err)
	_, err = issuer.ParseAccessToken("not.a.jwt")
	require.Error(t, err)
}

func TestTokenIssuer_RefreshToken(t *testing.T) {
	issuer := newTestIssuer(t, testTokenConfig())
	first, err := issuer.IssueRefreshToken()
	require.NoError(t, err)
	second, err := issuer.IssueRefreshToken()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	raw, err := base64.StdEncoding.DecodeString(first)
	require.NoError(t, err)
	require.Len(t, raw, 64)
}

func TestNewTokenIssuer_Misconfigured(t *testing.T) {
	cases := map[string]func(*TokenConfig){
		"secret":   func(c *TokenConfig) { c.Secret = nil },
		"issuer":   func(c *TokenConfig) { c.Issuer = " " },
		"audience": func(c *TokenConfig) { c.Audience = "" },
		"lifetime": func(c *TokenConfig) { c.AccessTokenLifetime = 0 },
	}
	for name, alter := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := testTokenConfig()
			alter(&cfg)
			_, err := NewTokenIssuer(cfg)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeConfig))
		})
	}
}
