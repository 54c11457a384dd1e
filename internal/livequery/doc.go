// Package livequery re-runs read expressions when the collections they
// depend on change.
//
// A view subscribes by supplying a Query: a closure that performs reads and
// records every collection it touches on the provided Scope. The registry
// executes the query immediately, delivers the result, and re-executes it
// after any write to a touched collection (the store reports writes through
// the ChangeListener hook).
//
// Delivery is coalesce-to-latest in both directions: pending triggers
// collapse into one re-execution, and an unread result is replaced by a
// newer one rather than queued. A subscription stays live until its context
// is cancelled or Close is called, after which no background work remains.
package livequery
