package auth

import (
	"log/slog"
	"time"
)

// SessionMode selects how a successful sign-in is bound to the client.
type SessionMode int

const (
	// ModeCookie establishes a server-side session in addition to the token pair.
	ModeCookie SessionMode = iota
	// ModeBearer returns the token pair only.
	ModeBearer
)

// ModeFromUseJWT maps the wire-level useJwt flag to a SessionMode.
func ModeFromUseJWT(useJWT bool) SessionMode {
	if useJWT {
		return ModeBearer
	}
	return ModeCookie
}

func (m SessionMode) String() string {
	switch m {
	case ModeBearer:
		return "bearer"
	default:
		return "cookie"
	}
}

// Config drives authentication behavior.
type Config struct {
	DefaultMode    SessionMode
	CookieLifetime time.Duration
	Token          TokenConfig
}

// TokenConfig holds the access token signing parameters.
type TokenConfig struct {
	Secret              []byte
	Issuer              string
	Audience            string
	AccessTokenLifetime time.Duration
}

// LogValue keeps the signing secret out of logs.
func (c TokenConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("issuer", c.Issuer),
		slog.String("audience", c.Audience),
		slog.Duration("accessTokenLifetime", c.AccessTokenLifetime),
		slog.String("secret", "[redacted]"),
	)
}

// Principal is the identity handle the core operates on.
type Principal struct {
	ID    string
	Email string
}

// NewUser carries the fields required to create an account.
type NewUser struct {
	Email       string
	Password    string
	PhoneNumber string
	BirthDate   time.Time
	Sex         string
}

// RefreshTokenRecord is the single live refresh token of an owner.
type RefreshTokenRecord struct {
	OwnerID  string    `json:"ownerId"`
	Value    string    `json:"value"`
	IssuedAt time.Time `json:"issuedAt"`
}

// SessionTicket is a server-tracked cookie session.
type SessionTicket struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	IssuedAt   time.Time `json:"issuedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Persistent bool      `json:"persistent"`
}

// Expired reports whether the ticket is past its expiry at now.
func (t SessionTicket) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenPair is returned by every successful sign-in.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// FailureKind classifies an expected failure.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureValidation
	FailureConflict
	FailureAuthentication
)

// Result is the tagged outcome of an auth operation.
type Result struct {
	Success bool
	Tokens  *TokenPair
	Session *SessionTicket
	Kind    FailureKind
	Errors  []string
}

func succeeded(tokens TokenPair, session *SessionTicket) Result {
	return Result{Success: true, Tokens: &tokens, Session: session}
}

func failed(kind FailureKind, errs ...string) Result {
	return Result{Kind: kind, Errors: errs}
}

// Claims are extracted from a verified access token.
type Claims struct {
	Subject   string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	PhoneNumber string    `json:"phoneNumber"`
	BirthDate   time.Time `json:"birthDate"`
	Sex         string    `json:"sex"`
	UseJWT      bool      `json:"useJwt"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UseJWT   bool   `json:"useJwt"`
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	UserID       string `json:"userId"`
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest captures a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
