// Package seed bootstraps an empty store with a default administrator
// account and a matching activity entry, so a fresh install is immediately
// usable. The check-then-insert is racy across processes; the account
// table's primary key settles the race in favor of the first writer.
package seed
