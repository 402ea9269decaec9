package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/rencard-user/internal/domain/auth"
)

func TestMemoryStore_ExpiredTicketsAreNotReturned(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, liveTicket("live", time.Hour)))
	require.NoError(t, store.Save(ctx, liveTicket("stale", -time.Second)))

	_, err := store.Get(ctx, "live")
	require.NoError(t, err)

	_, err = store.Get(ctx, "stale")
	require.ErrorIs(t, err, auth.ErrSessionNotFound)

	_, err = store.Get(ctx, "unknown")
	require.ErrorIs(t, err, auth.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "live"))
	_, err = store.Get(ctx, "live")
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
}
