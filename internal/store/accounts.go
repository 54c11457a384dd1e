// ABOUTME: Store methods for login accounts, keyed by username
// ABOUTME: Usernames are case-sensitively distinct; credentials are stored as-is

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddAccount inserts a new account. Returns ErrConflict if the username
// exists. Usernames are matched exactly; "Admin" and "admin" are distinct.
func (s *SQLiteStore) AddAccount(ctx context.Context, a *Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (username, password, role, display_name)
		VALUES (?, ?, ?, ?)
	`, a.Username, a.Password, a.Role, a.DisplayName)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("inserting account: %w", err)
	}
	s.logger.Info("created account", "username", a.Username, "role", a.Role)
	s.notify(CollectionAccounts)
	return nil
}

// GetAccount retrieves an account by username. Returns ErrNotFound if absent.
func (s *SQLiteStore) GetAccount(ctx context.Context, username string) (*Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password, role, display_name FROM accounts WHERE username = ?
	`, username).Scan(&a.Username, &a.Password, &a.Role, &a.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying account: %w", err)
	}
	return &a, nil
}

// UpdateAccount merges a patch into an existing account.
// Returns ErrNotFound if the username is absent.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, username string, p AccountPatch) error {
	a, err := s.GetAccount(ctx, username)
	if err != nil {
		return err
	}
	if p.Password != nil {
		a.Password = *p.Password
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.DisplayName != nil {
		a.DisplayName = *p.DisplayName
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE accounts SET password = ?, role = ?, display_name = ? WHERE username = ?
	`, a.Password, a.Role, a.DisplayName, username)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	s.logger.Info("updated account", "username", username)
	s.notify(CollectionAccounts)
	return nil
}

// DeleteAccount removes an account. Deleting an absent username is a no-op.
// A session restored from the mirror for a deleted account stays valid until
// the next explicit logout.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, username string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE username = ?", username); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	s.logger.Info("deleted account", "username", username)
	s.notify(CollectionAccounts)
	return nil
}

// ListAccounts returns all accounts in insertion order.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]*Account, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT username, password, role, display_name FROM accounts ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.Username, &a.Password, &a.Role, &a.DisplayName); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return accounts, nil
}

// CountAccounts returns the number of accounts.
func (s *SQLiteStore) CountAccounts(ctx context.Context) (int, error) {
	return s.count(ctx, "accounts")
}
