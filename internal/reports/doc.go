// Package reports derives display values from the record store: dashboard
// tallies, the total-stock aggregate, recent activity, and foreign-key
// lookups for rendering. Referential integrity is not enforced anywhere, so
// every lookup here maps a missing referent to the "-" placeholder instead
// of failing. All functions accept an optional livequery.Scope so the same
// reads can back one-shot views and live subscriptions.
package reports
