// Package reconcile merges the remote developer collection, the local cache
// and the queue of offline creates into the single list shown to the user.
//
// Engine.Load fetches the current page and writes it through to the cache.
// When the backend cannot be reached it serves the cache plus queued
// placeholders, filtered locally. Creates made while offline are queued and
// replayed in order by Drain once the change signal reconnects. Only the
// newest Load may change state; older in-flight loads are cancelled and
// their results discarded.
package reconcile
