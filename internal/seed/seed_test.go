// ABOUTME: Tests for the bootstrap account initializer
// ABOUTME: Covers idempotence, option overrides, and conflict-race tolerance

package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressbook/pressbook/internal/store"
)

func setupTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return st
}

func TestEnsure_SeedsEmptyStore(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, Ensure(ctx, st, Options{}, nil))

	account, err := st.GetAccount(ctx, DefaultUsername)
	require.NoError(t, err)
	assert.Equal(t, DefaultPassword, account.Password)
	assert.Equal(t, DefaultRole, account.Role)
	assert.Equal(t, DefaultDisplayName, account.DisplayName)

	entries, err := st.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "system", entries[0].Username)
	assert.Equal(t, "database initialized", entries[0].Activity)
}

func TestEnsure_Idempotent(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, Ensure(ctx, st, Options{}, nil))
	require.NoError(t, Ensure(ctx, st, Options{}, nil))
	require.NoError(t, Ensure(ctx, st, Options{}, nil))

	n, err := st.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Only the first run records the initialization entry.
	entries, err := st.ListActivity(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEnsure_SkipsWhenAnyAccountExists(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	// Any existing account suppresses seeding, not just the default one.
	require.NoError(t, st.AddAccount(ctx, &store.Account{Username: "staff", Password: "pw"}))
	require.NoError(t, Ensure(ctx, st, Options{}, nil))

	_, err := st.GetAccount(ctx, DefaultUsername)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnsure_OptionsOverrideDefaults(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	opts := Options{Username: "root", Password: "hunter2", DisplayName: "Root"}
	require.NoError(t, Ensure(ctx, st, opts, nil))

	account, err := st.GetAccount(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", account.Password)
	assert.Equal(t, DefaultRole, account.Role)
	assert.Equal(t, "Root", account.DisplayName)
}

// conflictStore reports an empty collection but rejects the insert, the shape
// of a lost seeding race against a concurrent process.
type conflictStore struct {
	*store.SQLiteStore
}

func (c *conflictStore) CountAccounts(ctx context.Context) (int, error) {
	return 0, nil
}

func (c *conflictStore) AddAccount(ctx context.Context, a *store.Account) error {
	return store.ErrConflict
}

func TestEnsure_LostRaceIsSuccess(t *testing.T) {
	st := setupTestStore(t)

	err := Ensure(context.Background(), &conflictStore{st}, Options{}, nil)
	assert.NoError(t, err)
}
