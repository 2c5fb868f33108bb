package timeline

import "github.com/easelhq/timeline/notify"

// BeginGroup opens an explicit group scope. States added while the scope is
// open collapse into a single undo step when EndGroup is called. Nested
// BeginGroup calls are ignored; exactly one EndGroup closes the scope.
func (m *Manager[T]) BeginGroup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.grouping {
		return
	}
	m.grouping = true
	m.pending = nil
}

// EndGroup closes the group scope and commits the collapsed state: the last
// added payload and description, with the element IDs of every grouped edit
// merged in order. Calling EndGroup without an open scope is a no-op.
//
// The collapsed state is budgeted like any other insert, so the eviction
// pass runs after the group is flushed, never against a half-open group.
func (m *Manager[T]) EndGroup() {
	m.mu.Lock()
	if !m.grouping {
		m.mu.Unlock()
		return
	}
	m.grouping = false

	if len(m.pending) == 0 {
		m.pending = nil
		m.mu.Unlock()
		return
	}

	last := m.pending[len(m.pending)-1]
	merged := &entry{
		id:          last.id,
		actionType:  last.actionType,
		description: last.description,
		category:    last.category,
		payload:     last.payload,
		compressed:  last.compressed,
		timestamp:   last.timestamp,
		size:        last.size,
		undoable:    true,
	}
	for _, p := range m.pending {
		merged.elementIDs = unionIDs(merged.elementIDs, p.elementIDs)
	}
	m.pending = nil

	added, evicted := m.pushLocked(merged)
	canUndo, canRedo := m.canUndoLocked(), m.canRedoLocked()
	m.mu.Unlock()

	m.publish(notify.Event{Kind: notify.EventAdded, StateID: added, CanUndo: canUndo, CanRedo: canRedo})
	if len(evicted) > 0 {
		m.publish(notify.Event{Kind: notify.EventEvicted, StateIDs: evicted, CanUndo: canUndo, CanRedo: canRedo})
	}
}

// CancelGroup discards the group scope and everything buffered in it.
// The host's document already reflects the edits; only the undo step is
// dropped.
func (m *Manager[T]) CancelGroup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.grouping = false
	m.pending = nil
}

// IsGrouping reports whether a group scope is open.
func (m *Manager[T]) IsGrouping() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grouping
}

// GroupScope provides a convenient way to group edits using defer.
// Usage:
//
//	func applyGradientPreset(m *timeline.Manager[Doc]) {
//	    defer m.GroupScope().End()
//	    // ... several AddState calls ...
//	}
type GroupScope[T any] struct {
	manager *Manager[T]
	active  bool
}

// GroupScope opens a group scope. Call End, or use with defer, to close it.
func (m *Manager[T]) GroupScope() *GroupScope[T] {
	m.BeginGroup()
	return &GroupScope[T]{manager: m, active: true}
}

// End closes the scope. Safe to call multiple times; only the first call
// has effect.
func (g *GroupScope[T]) End() {
	if g.active {
		g.manager.EndGroup()
		g.active = false
	}
}

// Cancel discards the scope without committing an undo step.
func (g *GroupScope[T]) Cancel() {
	if g.active {
		g.manager.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn within a group scope. If fn returns an error the
// group is cancelled, otherwise it is committed as one undo step.
func (m *Manager[T]) Transaction(fn func() error) error {
	m.BeginGroup()

	if err := fn(); err != nil {
		m.CancelGroup()
		return err
	}

	m.EndGroup()
	return nil
}
