// ABOUTME: One-time bootstrap that guarantees a usable administrator account
// ABOUTME: Runs after the store opens; a no-op whenever any account already exists

package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pressbook/pressbook/internal/store"
)

// Defaults for the bootstrap administrator. Overridable via Options.
const (
	DefaultUsername    = "admin"
	DefaultPassword    = "admin"
	DefaultRole        = "admin"
	DefaultDisplayName = "Administrator"
)

// Options overrides the bootstrap account. Zero values fall back to the
// package defaults.
type Options struct {
	Username    string
	Password    string
	DisplayName string
}

// Store is the slice of the record store the initializer needs.
type Store interface {
	CountAccounts(ctx context.Context) (int, error)
	AddAccount(ctx context.Context, a *store.Account) error
	AppendActivity(ctx context.Context, e *store.ActivityEntry) error
}

// Ensure inserts the bootstrap administrator and one initialization activity
// entry if and only if the account collection is empty. Calling it again is
// a no-op. Two processes seeding concurrently can both observe an empty
// collection; the username's primary key resolves the race — the second
// insert fails with a conflict, which Ensure treats as success.
func Ensure(ctx context.Context, st Store, opts Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "seed")

	count, err := st.CountAccounts(ctx)
	if err != nil {
		return fmt.Errorf("counting accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	account := &store.Account{
		Username:    orDefault(opts.Username, DefaultUsername),
		Password:    orDefault(opts.Password, DefaultPassword),
		Role:        DefaultRole,
		DisplayName: orDefault(opts.DisplayName, DefaultDisplayName),
	}

	if err := st.AddAccount(ctx, account); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Another seeder won the race; its account stands.
			logger.Info("seed account already created by concurrent writer")
			return nil
		}
		return fmt.Errorf("inserting seed account: %w", err)
	}

	if err := st.AppendActivity(ctx, &store.ActivityEntry{
		Username: "system",
		Activity: "database initialized",
	}); err != nil {
		return fmt.Errorf("recording initialization: %w", err)
	}

	logger.Info("seeded default account", "username", account.Username)
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
