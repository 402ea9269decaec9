package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/yanqian/rencard-user/pkg/errors"
	"github.com/yanqian/rencard-user/pkg/util"
)

const sessionIDBytes = 32

// SessionBinder manages cookie sessions with sliding expiry.
type SessionBinder struct {
	store    SessionStore
	lifetime time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionBinder constructs a binder whose sessions live for lifetime past their last use.
func NewSessionBinder(store SessionStore, lifetime time.Duration, logger *slog.Logger) *SessionBinder {
	return &SessionBinder{
		store:    store,
		lifetime: lifetime,
		logger:   logger.With("component", "auth.session"),
		now:      util.NowUTC,
	}
}

// Establish creates a persistent session for principal.
func (b *SessionBinder) Establish(ctx context.Context, principal Principal) (SessionTicket, error) {
	id, err := newSessionID()
	if err != nil {
		return SessionTicket{}, apperrors.Wrap(apperrors.CodeAuth, "failed to generate session id", err)
	}
	now := b.now()
	ticket := SessionTicket{
		ID:         id,
		OwnerID:    principal.ID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(b.lifetime),
		Persistent: true,
	}
	if err := b.store.Save(ctx, ticket); err != nil {
		return SessionTicket{}, apperrors.Wrap(apperrors.CodeStorage, "failed to save session", err)
	}
	return ticket, nil
}

// Resume loads a live session and slides its expiry forward by the lifetime.
func (b *SessionBinder) Resume(ctx context.Context, id string) (SessionTicket, bool, error) {
	if id == "" {
		return SessionTicket{}, false, nil
	}
	ticket, err := b.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return SessionTicket{}, false, nil
		}
		return SessionTicket{}, false, apperrors.Wrap(apperrors.CodeStorage, "failed to load session", err)
	}
	now := b.now()
	if ticket.Expired(now) {
		if err := b.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			b.logger.Warn("failed to delete expired session", "owner_id", ticket.OwnerID, "error", err)
		}
		return SessionTicket{}, false, nil
	}
	ticket.ExpiresAt = now.Add(b.lifetime)
	if err := b.store.Save(ctx, ticket); err != nil {
		return SessionTicket{}, false, apperrors.Wrap(apperrors.CodeStorage, "failed to renew session", err)
	}
	return ticket, true, nil
}

// Terminate removes the session. Unknown ids are not an error.
func (b *SessionBinder) Terminate(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := b.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return apperrors.Wrap(apperrors.CodeStorage, "failed to delete session", err)
	}
	return nil
}

func newSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
