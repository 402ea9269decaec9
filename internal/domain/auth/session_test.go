package auth

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionBinder_EstablishAndSlide(t *testing.T) {
	store := newFakeSessionStore()
	binder := NewSessionBinder(store, 7*24*time.Hour, newTestLogger())
	start := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	binder.now = func() time.Time { return start }

	ticket, err := binder.Establish(context.Background(), Principal{ID: "user-1"})
	require.NoError(t, err)
	require.True(t, ticket.Persistent)
	require.Equal(t, "user-1", ticket.OwnerID)
	require.Equal(t, start.Add(7*24*time.Hour), ticket.ExpiresAt)

	later := start.Add(3 * 24 * time.Hour)
	binder.now = func() time.Time { return later }
	resumed, ok, err := binder.Resume(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, later.Add(7*24*time.Hour), resumed.ExpiresAt)
	require.Equal(t, start, resumed.IssuedAt)

	stored, err := store.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, resumed.ExpiresAt, stored.ExpiresAt)
}

func TestSessionBinder_ExpiredSessionIsDropped(t *testing.T) {
	store := newFakeSessionStore()
	binder := NewSessionBinder(store, time.Hour, newTestLogger())
	start := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	binder.now = func() time.Time { return start }
	ticket, err := binder.Establish(context.Background(), Principal{ID: "user-1"})
	require.NoError(t, err)

	binder.now = func() time.Time { return start.Add(time.Hour) }
	_, ok, err := binder.Resume(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, store.count())
}

func TestSessionBinder_TerminateIsIdempotent(t *testing.T) {
	store := newFakeSessionStore()
	binder := NewSessionBinder(store, time.Hour, newTestLogger())
	ticket, err := binder.Establish(context.Background(), Principal{ID: "user-1"})
	require.NoError(t, err)

	require.NoError(t, binder.Terminate(context.Background(), ticket.ID))
	require.NoError(t, binder.Terminate(context.Background(), ticket.ID))
	require.NoError(t, binder.Terminate(context.Background(), ""))

	_, ok, err := binder.Resume(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

type undeletableSessions struct {
	*fakeSessionStore
}

func (undeletableSessions) Delete(context.Context, string) error {
	return errors.New("redis: connection refused")
}

func TestSessionBinder_ExpiredSessionDeleteFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	store := undeletableSessions{fakeSessionStore: newFakeSessionStore()}
	binder := NewSessionBinder(store, time.Hour, slog.New(slog.NewTextHandler(&logs, nil)))
	start := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	binder.now = func() time.Time { return start }
	ticket, err := binder.Establish(context.Background(), Principal{ID: "user-1"})
	require.NoError(t, err)

	binder.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, ok, err := binder.Resume(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.False(t, ok)
	require.Contains(t, logs.String(), "level=WARN")
	require.Contains(t, logs.String(), "failed to delete expired session")
	require.Contains(t, logs.String(), "component=auth.session")
	require.Contains(t, logs.String(), "redis: connection refused")
}
