package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/colombia-mcp/pkg/domain"
)

// RunStoreContract verifies that a Store implementation adheres to the interface
// contract. The store must not expire sessions during the run.
func RunStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Create and Get", func(t *testing.T) {
		id := prefix + "-get"
		require.NoError(t, store.Create(ctx, Session{ID: id, Transport: "http", CreatedAt: created, LastSeen: created}))

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "http", got.Transport)
		assert.True(t, created.Equal(got.CreatedAt))
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+prefix)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Touch", func(t *testing.T) {
		id := prefix + "-touch"
		require.NoError(t, store.Create(ctx, Session{ID: id, Transport: "http", CreatedAt: created, LastSeen: created}))

		later := created.Add(time.Minute)
		require.NoError(t, store.Touch(ctx, id, later))

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, later.Equal(got.LastSeen), "LastSeen should be refreshed")

		assert.ErrorIs(t, store.Touch(ctx, "non-existent-"+prefix, later), domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := prefix + "-delete"
		require.NoError(t, store.Create(ctx, Session{ID: id, Transport: "stdio", CreatedAt: created, LastSeen: created}))

		require.NoError(t, store.Delete(ctx, id))
		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Get after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := prefix + "-1"
		id2 := prefix + "-2"
		require.NoError(t, store.Create(ctx, Session{ID: id1, Transport: "http", CreatedAt: created, LastSeen: created}))
		require.NoError(t, store.Create(ctx, Session{ID: id2, Transport: "http", CreatedAt: created, LastSeen: created}))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
