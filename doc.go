// Package timeline provides the undo/redo history engine for a canvas editor.
//
// The engine keeps a bounded, memory-aware, optionally compressed timeline
// of application state snapshots and a single cursor into it. Key concepts:
//
// # States
//
// A State is one recorded point in the timeline: an opaque payload owned by
// the engine plus metadata (action type, description, category, touched
// element IDs, timestamp, stored size). Payloads are encoded at insertion
// time, so a caller mutating its copy afterwards cannot corrupt history.
//
// # Navigation
//
// The manager maintains a cursor into the ordered timeline:
//
//	m := timeline.New[CanvasState]()
//
//	m.AddState("elements_update", "Move rectangle", state, ids, timeline.CategoryTransform)
//
//	st, err := m.Undo() // previous state, or ErrNothingToUndo
//	st, err = m.Redo()  // forward again, or ErrNothingToRedo
//
// Adding a state while the cursor is not at the tail discards the redo
// branch; history is strictly linear.
//
// # Grouping
//
// Rapid edits can collapse into a single undo step, either explicitly:
//
//	m.BeginGroup()
//	// ... several edits ...
//	m.EndGroup()
//
// or automatically, when consecutive states share an action type within a
// configured time window.
//
// # Budgets
//
// Entry count and aggregate payload size are capped. When either cap is
// exceeded the oldest states are evicted from the head of the timeline.
// Eviction never removes the state at or after the cursor.
//
// # Persistence
//
// The whole timeline round-trips through Export/Import, and an optional
// auto-save timer pushes export documents to a Sink in the background.
package timeline
