// ABOUTME: Tests for the session gate: login, logout, restore, and audit pairing
// ABOUTME: Runs against a real SQLite store in a temp directory

package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressbook/pressbook/internal/store"
)

func setupGate(t *testing.T) (*Gate, *store.SQLiteStore) {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.AddAccount(context.Background(), &store.Account{
		Username:    "admin",
		Password:    "admin",
		Role:        "admin",
		DisplayName: "Administrator",
	}))

	return New(st, nil), st
}

func TestLogin_CorrectCredentials(t *testing.T) {
	gate, _ := setupGate(t)
	ctx := context.Background()

	ok := gate.Login(ctx, "admin", "admin")
	require.True(t, ok)

	account, active := gate.Current()
	require.True(t, active)
	assert.Equal(t, "admin", account.Username)
	assert.Equal(t, "admin", account.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	gate, _ := setupGate(t)

	ok := gate.Login(context.Background(), "admin", "wrong")
	assert.False(t, ok)

	_, active := gate.Current()
	assert.False(t, active)
}

func TestLogin_UnknownUser(t *testing.T) {
	gate, _ := setupGate(t)

	// Unknown user and bad password are indistinguishable to the caller.
	ok := gate.Login(context.Background(), "nobody", "admin")
	assert.False(t, ok)
}

func TestLogin_FailureLeavesNoTrace(t *testing.T) {
	gate, st := setupGate(t)
	ctx := context.Background()

	gate.Login(ctx, "admin", "wrong")

	entries, err := st.ListActivity(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed logins are not audited")

	_, err = st.GetState(ctx, StateKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoginLogout_AuditPair(t *testing.T) {
	gate, st := setupGate(t)
	ctx := context.Background()

	require.True(t, gate.Login(ctx, "admin", "admin"))
	gate.Logout(ctx)

	entries, err := st.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first: the logout precedes the login in the listing.
	assert.Equal(t, "logged out", entries[0].Activity)
	assert.Equal(t, "admin", entries[0].Username)
	assert.Equal(t, "logged in", entries[1].Activity)
	assert.Equal(t, "admin", entries[1].Username)
}

func TestLogout_WithoutSessionIsNoOp(t *testing.T) {
	gate, st := setupGate(t)
	ctx := context.Background()

	gate.Logout(ctx)

	entries, err := st.ListActivity(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogout_ClearsMirror(t *testing.T) {
	gate, st := setupGate(t)
	ctx := context.Background()

	require.True(t, gate.Login(ctx, "admin", "admin"))
	_, err := st.GetState(ctx, StateKey)
	require.NoError(t, err)

	gate.Logout(ctx)

	_, err = st.GetState(ctx, StateKey)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, active := gate.Current()
	assert.False(t, active)
}

func TestRestore_ReloadsSession(t *testing.T) {
	gate, st := setupGate(t)
	ctx := context.Background()

	require.True(t, gate.Login(ctx, "admin", "admin"))

	// A fresh gate over the same store models a process restart.
	restarted := New(st, nil)
	restarted.Restore(ctx)

	account, active := restarted.Current()
	require.True(t, active)
	assert.Equal(t, "admin", account.Username)
	assert.Equal(t, "Administrator", account.DisplayName)
}

func TestRestore_NothingPersisted(t *testing.T) {
	gate, _ := setupGate(t)

	gate.Restore(context.Background())

	_, active := gate.Current()
	assert.False(t, active)
}

func TestRestore_TrustsStaleMirror(t *testing.T) {
	gate, st := setupGate(t)
	ctx := context.Background()

	require.True(t, gate.Login(ctx, "admin", "admin"))

	// The account vanishes while the mirror survives; restore does not
	// re-validate, so the session comes back anyway.
	require.NoError(t, st.DeleteAccount(ctx, "admin"))

	restarted := New(st, nil)
	restarted.Restore(ctx)

	account, active := restarted.Current()
	require.True(t, active)
	assert.Equal(t, "admin", account.Username)
}

func TestRestore_DiscardsCorruptMirror(t *testing.T) {
	gate, st := setupGate(t)
	ctx := context.Background()

	require.NoError(t, st.PutState(ctx, StateKey, []byte("not json")))
	gate.Restore(ctx)

	_, active := gate.Current()
	assert.False(t, active)
}

func TestLogin_ReplacesExistingSession(t *testing.T) {
	gate, st := setupGate(t)
	ctx := context.Background()

	require.NoError(t, st.AddAccount(ctx, &store.Account{Username: "staff", Password: "pw", Role: "staff"}))

	require.True(t, gate.Login(ctx, "admin", "admin"))
	require.True(t, gate.Login(ctx, "staff", "pw"))

	account, active := gate.Current()
	require.True(t, active)
	assert.Equal(t, "staff", account.Username)
}
