// Package harness replays recorded push-event scenarios against the live
// sync pipeline and checks the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: status_patch
//	description: "A status event patches the board and reloads it"
//	page_size: "10"          # optional, "all" allowed
//	active_session: s1       # optional, the open pairing dialog
//	sessions:                # optional, initial session board
//	  - { id: s1, status: qr }
//	flow:
//	  - connect: true
//	  - event: session:status
//	    data: { sessionId: s1, status: connected }
//	  - event: webhook:sent
//	    repeat: 3
//	    data: { sessionId: s1, event: "message-{{n}}", success: true }
//	assertions:
//	  - type: trace_contains
//	    action: patch_status
//	    args: { session: s1, found: true }
//	  - type: final_state
//	    table: sessions
//	    where: { id: s1 }
//	    expect: { status: connected }
//
// String values inside data may contain {{n}}, replaced by the zero-based
// repetition index.
//
// # Assertion Types
//
//   - trace_contains: an action appears in the trace with matching args
//   - trace_order: actions appear in the given order
//   - trace_count: an action appears exactly count times
//   - final_state: the first row of a table matching where has the expected
//     fields (tables: history, sessions)
//   - state_count: a table has count rows matching where
//
// # Deterministic Replay
//
// Every run uses a fresh in-memory kv store, a deterministic clock and UTC
// Indonesian date formatting, so traces and history rows are identical
// across runs and can be compared against golden files.
package harness
