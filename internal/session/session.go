// ABOUTME: Session/auth gate: login, logout, and restore against the account store
// ABOUTME: Holds the single current session in memory with a durable mirror for reloads

package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pressbook/pressbook/internal/store"
)

// StateKey is the durable key/value slot holding the serialized account of
// the active session. Absent when logged out.
const StateKey = "currentUser"

// Store is the slice of the record store the gate needs.
type Store interface {
	GetAccount(ctx context.Context, username string) (*store.Account, error)
	AppendActivity(ctx context.Context, e *store.ActivityEntry) error
	PutState(ctx context.Context, key string, value []byte) error
	GetState(ctx context.Context, key string) ([]byte, error)
	DeleteState(ctx context.Context, key string) error
}

// Gate authenticates credentials and holds the single current session.
// There is exactly one session per process: a later login overwrites an
// earlier one. Construct one Gate at the application root and inject it;
// there is no package-level instance.
type Gate struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	current *store.Account
}

// New creates a gate. Pass nil logger for default.
func New(st Store, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		store:  st,
		logger: logger.With("component", "session"),
	}
}

// Login validates a username/credential pair. It returns false for an
// unknown user, a credential mismatch, or a storage failure; the causes are
// deliberately not distinguished. On success it sets the in-memory session,
// persists the account to the durable mirror, appends one activity entry,
// and returns true.
func (g *Gate) Login(ctx context.Context, username, password string) bool {
	account, err := g.store.GetAccount(ctx, username)
	if err != nil {
		g.logger.Debug("login failed", "username", username)
		return false
	}
	if account.Password != password {
		g.logger.Debug("login failed", "username", username)
		return false
	}

	g.mu.Lock()
	g.current = account
	g.mu.Unlock()

	payload, err := json.Marshal(account)
	if err == nil {
		err = g.store.PutState(ctx, StateKey, payload)
	}
	if err != nil {
		// The in-memory session stands; only the reload mirror is stale.
		g.logger.Warn("failed to persist session mirror", "username", username, "error", err)
	}

	if err := g.store.AppendActivity(ctx, &store.ActivityEntry{
		Username: username,
		Activity: "logged in",
	}); err != nil {
		g.logger.Warn("failed to record login activity", "username", username, "error", err)
	}

	g.logger.Info("login succeeded", "username", username)
	return true
}

// Logout ends the current session. The activity append is best-effort: the
// session and its mirror are cleared even when the append fails. Logging out
// with no session is a no-op.
func (g *Gate) Logout(ctx context.Context) {
	g.mu.Lock()
	current := g.current
	g.current = nil
	g.mu.Unlock()

	if current == nil {
		return
	}

	if err := g.store.AppendActivity(ctx, &store.ActivityEntry{
		Username: current.Username,
		Activity: "logged out",
	}); err != nil {
		g.logger.Warn("failed to record logout activity", "username", current.Username, "error", err)
	}

	if err := g.store.DeleteState(ctx, StateKey); err != nil {
		g.logger.Warn("failed to clear session mirror", "error", err)
	}

	g.logger.Info("logout", "username", current.Username)
}

// Restore loads a session from the durable mirror, if one exists. The
// payload is trusted without re-validation against the account collection:
// an account deleted or edited since login stays active until the next
// explicit logout. Run once at process start.
func (g *Gate) Restore(ctx context.Context) {
	payload, err := g.store.GetState(ctx, StateKey)
	if err != nil {
		return
	}

	var account store.Account
	if err := json.Unmarshal(payload, &account); err != nil {
		g.logger.Warn("discarding unreadable session mirror", "error", err)
		return
	}

	g.mu.Lock()
	g.current = &account
	g.mu.Unlock()

	g.logger.Info("session restored", "username", account.Username)
}

// Current returns the active session's account, or false when logged out.
func (g *Gate) Current() (*store.Account, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == nil {
		return nil, false
	}
	return g.current, true
}
