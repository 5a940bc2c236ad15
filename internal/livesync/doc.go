// Package livesync keeps the dashboard in step with the gateway's push events.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Push events, connection notifications and UI commands are enqueued on one
// FIFO queue and processed by Loop.Run in a single goroutine, each to
// completion before the next starts. The history store, paginator and
// surfaces are therefore never touched concurrently and need no locks.
//
// Routing Policy (Consumer.Handle):
//   - session:created, session:deleted: coarse reload of the session directory
//   - session:status: targeted patch of one session element, then a reload so
//     derived counts and selectors stay consistent
//   - session:qr, session:ready: only acted on when the detail surface is
//     showing that exact session; an accepted ready also reloads the directory
//   - webhook:sent: the only event that feeds the history store; the success
//     flag is also forwarded to the statistics aggregator. Off-type fields
//     are coerced or left empty, only a non-object payload is dropped
//   - event:log: logging sink, no state change
//
// Unrecognized events are ignored. Malformed payloads are logged and dropped.
// Stale patch targets are skipped; the reload reconciles them.
//
// Delivery is at-least-once from the transport and nothing is deduplicated.
// Events missed while disconnected are not replayed.
package livesync
