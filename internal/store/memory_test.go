package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	item := Item{"id": "w1", "event_type": "user.created", "processed": false}
	require.NoError(t, s.Put(ctx, "webhooks", item))

	got, err := s.Get(ctx, "webhooks", "w1")
	require.NoError(t, err)
	assert.Equal(t, "w1", got.ID())
	assert.Equal(t, "user.created", got["event_type"])

	// Mutating the returned item must not leak back into the store.
	got["event_type"] = "mutated"
	again, err := s.Get(ctx, "webhooks", "w1")
	require.NoError(t, err)
	assert.Equal(t, "user.created", again["event_type"])
}

func TestMemoryStorePutRequiresID(t *testing.T) {
	s := NewMemoryStore()
	err := s.Put(context.Background(), "webhooks", Item{"event_type": "x"})
	assert.Error(t, err)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "webhooks", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "webhooks", Item{
		"id":         "w1",
		"event_type": "user.created",
		"source":     "svc-a",
		"updated_at": "2020-01-01T00:00:00Z",
	}))

	t.Run("PartialMerge", func(t *testing.T) {
		merged, err := s.Update(ctx, "webhooks", "w1", Item{"source": "svc-b"})
		require.NoError(t, err)
		assert.Equal(t, "svc-b", merged["source"])
		assert.Equal(t, "user.created", merged["event_type"], "untouched fields keep prior values")
		assert.NotEqual(t, "2020-01-01T00:00:00Z", merged["updated_at"])
	})

	t.Run("EmptyMergeStillRefreshesUpdatedAt", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "webhooks", Item{
			"id":         "w1",
			"event_type": "user.created",
			"updated_at": "2020-01-01T00:00:00Z",
		}))

		merged, err := s.Update(ctx, "webhooks", "w1", Item{})
		require.NoError(t, err)
		assert.Equal(t, "user.created", merged["event_type"])
		assert.NotEqual(t, "2020-01-01T00:00:00Z", merged["updated_at"])
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := s.Update(ctx, "webhooks", "nope", Item{"source": "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStoreScan(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Put(ctx, "sms", Item{"id": id}))
	}

	items, err := s.Scan(ctx, "sms", 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	all, err := s.Scan(ctx, "sms", 100)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	empty, err := s.Scan(ctx, "unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sms", Item{"id": "s1"}))
	require.NoError(t, s.Delete(ctx, "sms", "s1"))

	_, err := s.Get(ctx, "sms", "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent id is a no-op.
	assert.NoError(t, s.Delete(ctx, "sms", "s1"))
	assert.NoError(t, s.Delete(ctx, "never-addressed", "x"))
}
