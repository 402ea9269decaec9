package tokenstore

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReplaceInvalidatesPrevious(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ok, err := store.Validate(ctx, "u1", "anything")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Replace(ctx, "u1", "t1"))
	require.NoError(t, store.Replace(ctx, "u1", "t2"))

	ok, err = store.Validate(ctx, "u1", "t1")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.Validate(ctx, "u1", "t2")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.Validate(ctx, "u2", "t2")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStore_EmptyPresentedNeverMatches(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, "u1", "t1"))

	ok, err := store.Validate(ctx, "u1", "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStore_ConcurrentReplaceLeavesOneLiveToken(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	const writers = 32

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			require.NoError(t, store.Replace(ctx, "u1", "t"+strconv.Itoa(i)))
		}(i)
	}
	wg.Wait()

	live := 0
	for i := 0; i < writers; i++ {
		ok, err := store.Validate(ctx, "u1", "t"+strconv.Itoa(i))
		require.NoError(t, err)
		if ok {
			live++
		}
	}
	require.Equal(t, 1, live)
}
