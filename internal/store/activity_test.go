// ABOUTME: Tests for the append-only activity log
// ABOUTME: Covers generated IDs, newest-first ordering, limits, and actor filtering

package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendActivity_GeneratesIDAndTimestamp(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	entry := &ActivityEntry{Username: "admin", Activity: "logged in"}
	require.NoError(t, store.AppendActivity(ctx, entry))

	assert.True(t, strings.HasPrefix(entry.ID, "LOG-"))
	assert.False(t, entry.Timestamp.IsZero())
}

func TestAppendActivity_KeepsCallerValues(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	entry := &ActivityEntry{ID: "LOG-fixed", Username: "admin", Activity: "seeded", Timestamp: ts}
	require.NoError(t, store.AppendActivity(ctx, entry))

	entries, err := store.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "LOG-fixed", entries[0].ID)
	assert.True(t, entries[0].Timestamp.Equal(ts))
}

func TestAppendActivity_DuplicateID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendActivity(ctx, &ActivityEntry{ID: "LOG-1", Username: "admin", Activity: "x"}))
	err := store.AppendActivity(ctx, &ActivityEntry{ID: "LOG-1", Username: "admin", Activity: "y"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestListActivity_NewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendActivity(ctx, &ActivityEntry{
			Username:  "admin",
			Activity:  fmt.Sprintf("action %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := store.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "action 2", entries[0].Activity)
	assert.Equal(t, "action 0", entries[2].Activity)
}

func TestListActivity_SameSecondOrderedByID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// RFC3339 stores second resolution; entries in the same second fall
	// back to the generated ID, which is monotonic.
	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendActivity(ctx, &ActivityEntry{
			Username: "admin",
			Activity: fmt.Sprintf("burst %d", i),
		}))
	}

	entries, err := store.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "burst 4", entries[0].Activity)
	assert.Equal(t, "burst 0", entries[4].Activity)
}

func TestListActivity_LimitApplied(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		require.NoError(t, store.AppendActivity(ctx, &ActivityEntry{
			Username:  "admin",
			Activity:  fmt.Sprintf("action %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := store.ListActivity(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "action 9", entries[0].Activity)
}

func TestNormalizeActivityLimit(t *testing.T) {
	assert.Equal(t, 100, normalizeActivityLimit(0))
	assert.Equal(t, 100, normalizeActivityLimit(-5))
	assert.Equal(t, 50, normalizeActivityLimit(50))
	assert.Equal(t, 1000, normalizeActivityLimit(5000))
}

func TestListActivityByUsername(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendActivity(ctx, &ActivityEntry{Username: "admin", Activity: "a", Timestamp: base}))
	require.NoError(t, store.AppendActivity(ctx, &ActivityEntry{Username: "staff", Activity: "b", Timestamp: base.Add(time.Second)}))
	require.NoError(t, store.AppendActivity(ctx, &ActivityEntry{Username: "admin", Activity: "c", Timestamp: base.Add(2 * time.Second)}))

	entries, err := store.ListActivityByUsername(ctx, "admin", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Activity)
	assert.Equal(t, "a", entries[1].Activity)

	n, err := store.CountActivity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
