package auth

import "context"

// UserDirectory owns identity records and password verification.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (Principal, bool, error)
	FindByID(ctx context.Context, id string) (Principal, bool, error)
	// CreateUser returns a *DirectoryError for duplicates and policy violations.
	CreateUser(ctx context.Context, user NewUser) (Principal, error)
	VerifyPassword(ctx context.Context, principal Principal, password string) (bool, error)
	// ChangePassword returns a *DirectoryError when the change is rejected.
	ChangePassword(ctx context.Context, principal Principal, current, next string) error
}

// RefreshTokenStore keeps at most one refresh token per owner.
type RefreshTokenStore interface {
	// Replace discards any token held by ownerID and stores value.
	Replace(ctx context.Context, ownerID, value string) error
	Validate(ctx context.Context, ownerID, presented string) (bool, error)
}

// SessionStore persists cookie sessions.
type SessionStore interface {
	Save(ctx context.Context, ticket SessionTicket) error
	// Get returns ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (SessionTicket, error)
	Delete(ctx context.Context, id string) error
}

// Recorder observes operation outcomes.
type Recorder interface {
	Observe(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Observe(string, string) {}
