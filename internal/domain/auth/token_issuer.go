package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/rencard-user/pkg/errors"
	"github.com/yanqian/rencard-user/pkg/util"
)

const refreshTokenBytes = 64

// registered claims cannot be overridden by caller supplied extras.
var registeredClaims = map[string]struct{}{
	"sub": {}, "iss": {}, "aud": {}, "exp": {}, "iat": {}, "nbf": {}, "jti": {},
}

// TokenIssuer mints HS256 access tokens and opaque refresh tokens.
type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenIssuer validates cfg. A misconfigured issuer is a startup failure.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	switch {
	case len(cfg.Secret) == 0:
		return nil, apperrors.Wrap(apperrors.CodeConfig, "jwt signing secret is missing", nil)
	case strings.TrimSpace(cfg.Issuer) == "":
		return nil, apperrors.Wrap(apperrors.CodeConfig, "jwt issuer is missing", nil)
	case strings.TrimSpace(cfg.Audience) == "":
		return nil, apperrors.Wrap(apperrors.CodeConfig, "jwt audience is missing", nil)
	case cfg.AccessTokenLifetime <= 0:
		return nil, apperrors.Wrap(apperrors.CodeConfig, "access token lifetime must be positive", nil)
	}
	return &TokenIssuer{cfg: cfg, now: util.NowUTC}, nil
}

// IssueAccessToken signs a token whose subject is principalID.
func (i *TokenIssuer) IssueAccessToken(principalID string, extra map[string]any) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{}
	for k, v := range extra {
		if _, reserved := registeredClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = principalID
	claims["iss"] = i.cfg.Issuer
	claims["aud"] = i.cfg.Audience
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(i.cfg.AccessTokenLifetime))
	claims["jti"] = uuid.NewString()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeAuth, "failed to sign token", err)
	}
	return signed, nil
}

// IssueRefreshToken returns 64 random bytes, base64 encoded.
func (i *TokenIssuer) IssueRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Wrap(apperrors.CodeAuth, "failed to generate refresh token", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// ParseAccessToken verifies signature, issuer, audience and expiry.
func (i *TokenIssuer) ParseAccessToken(token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing", nil)
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return i.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithAudience(i.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperrors.Wrap("invalid_token", "token expired", err)
		}
		return Claims{}, apperrors.Wrap("invalid_token", "token validation failed", err)
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
	}
	subject, err := mapClaims.GetSubject()
	if err != nil || subject == "" {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing subject", err)
	}
	out := Claims{Subject: subject, Extra: map[string]any{}}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	for k, v := range mapClaims {
		if _, reserved := registeredClaims[k]; reserved {
			if k == "jti" {
				out.ID, _ = v.(string)
			}
			continue
		}
		out.Extra[k] = v
	}
	return out, nil
}
