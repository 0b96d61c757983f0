package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/recipebook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveSnapshot(t *testing.T, ch <-chan []model.Recipe) []model.Recipe {
	t.Helper()
	select {
	case snapshot, ok := <-ch:
		require.True(t, ok, "subscription closed unexpectedly")
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSQLiteStorage_SubscribeEmitsOnChange(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := sampleRecipe("1", "Lasagna")
	require.NoError(t, store.Upsert(ctx, &first))

	ch, stop, err := store.Subscribe(ctx)
	require.NoError(t, err)
	defer stop()

	initial := receiveSnapshot(t, ch)
	require.Len(t, initial, 1)
	assert.Equal(t, "Lasagna", initial[0].Title)

	second := sampleRecipe("2", "Brownies")
	require.NoError(t, store.Upsert(ctx, &second))
	assert.Len(t, receiveSnapshot(t, ch), 2)

	require.NoError(t, store.Delete(ctx, &first))
	after := receiveSnapshot(t, ch)
	require.Len(t, after, 1)
	assert.Equal(t, "2", after[0].ID)
}

func TestSQLiteStorage_SubscribeKeepsNewestSnapshot(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	ch, stop, err := store.Subscribe(ctx)
	require.NoError(t, err)
	defer stop()

	// Writes land while nobody is reading; the reader eventually sees all five rows.
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		r := sampleRecipe(id, "Recipe "+id)
		require.NoError(t, store.Upsert(ctx, &r))
	}

	require.Eventually(t, func() bool {
		select {
		case snapshot := <-ch:
			return len(snapshot) == 5
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSQLiteStorage_SubscribeStop(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ch, stop, err := store.Subscribe(context.Background())
	require.NoError(t, err)
	receiveSnapshot(t, ch)

	stop()
	stop() // idempotent

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after stop")
	}

	require.Eventually(t, func() bool { return store.notifier.count() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestSQLiteStorage_SubscribeContextCancel(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	ch, stop, err := store.Subscribe(ctx)
	require.NoError(t, err)
	defer stop()
	receiveSnapshot(t, ch)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after context cancel")
	}
}

func TestSQLiteStorage_SubscribeAfterClose(t *testing.T) {
	store, cleanup := createTestStorage(t)
	cleanup()

	_, _, err := store.Subscribe(context.Background())
	require.ErrorIs(t, err, ErrStoreClosed)
}

func TestSQLiteStorage_CloseEndsSubscriptions(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	ch, stop, err := store.Subscribe(context.Background())
	require.NoError(t, err)
	defer stop()
	receiveSnapshot(t, ch)

	require.NoError(t, store.Close())

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after store close")
	}
}
