// Package kv provides durable client-local key/value persistence for hookwatch.
//
// The dashboard keeps two independent keys: the webhook delivery history
// (a JSON array, newest first) and the page-size preference. Both are opaque
// byte values to this package.
//
// # Backends
//
// Backends are selected by DSN scheme through Open:
//   - sqlite://path (or a bare path): SQLite with WAL mode, the default
//   - memory://: in-process map with an optional byte quota
//   - file://path: a single JSON document rewritten atomically
//   - postgres://...: a shared table, useful when several dashboards share state
//
// Additional schemes can be plugged in with RegisterFactory.
//
// All backends are fallible. Callers in this repository treat every error as
// a persistence failure: logged, never fatal.
package kv
