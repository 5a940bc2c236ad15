// Package history implements the bounded webhook delivery history.
//
// The Store holds delivery records newest first and enforces
// len(records) <= capacity immediately after every insertion: the new record
// is prepended and the oldest records are evicted from the tail. The whole
// sequence is persisted to a kv.Store after each mutation.
//
// Persistence is best effort. A failed write (quota exceeded, serialization
// error, unreachable database) is logged and swallowed; the in-memory
// sequence stays authoritative for the running session and the next
// successful mutation persists it again.
//
// Thread-safety: Store is not safe for concurrent use. Drive every mutation
// from one goroutine (see livesync.Loop).
package history
