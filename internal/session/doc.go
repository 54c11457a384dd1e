// Package session gates access to the record store behind a username and
// credential check.
//
// A Gate holds at most one session: the account that last logged in. The
// session is mirrored to a durable key/value slot so a process restart can
// restore it without a fresh login; the mirror is trusted as-is on restore.
//
// Login collapses every failure cause — unknown user, wrong credential,
// storage error — into a single boolean, matching the surrounding design's
// habit of not surfacing storage faults to the login form. Logout is
// unconditionally effective even when its audit append fails.
package session
