package timeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easelhq/timeline/notify"
)

// Manager maintains the undo/redo timeline for payloads of type T.
//
// All operations are serialized behind a single mutex, so a Manager is safe
// for concurrent use; in the common single-threaded UI host the lock is
// uncontended. Navigation past either end of the timeline is reported with
// the ErrNothingToUndo/ErrNothingToRedo sentinels rather than treated as a
// failure, since undo/redo sit on a hot user-facing path.
type Manager[T any] struct {
	mu  sync.Mutex
	cfg config

	entries []*entry
	cursor  int   // index of the current state, -1 when empty
	memory  int64 // sum of stored payload sizes

	// Explicit grouping state
	grouping bool
	pending  []*entry

	// lastAddID marks the tail entry still eligible for time-window
	// coalescing. Cleared by any navigation, clear, or import.
	lastAddID string

	// now is replaceable in tests.
	now func() time.Time

	// Auto-save lifecycle
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// New creates a Manager with the given options.
func New[T any](opts ...Option) *Manager[T] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Manager[T]{
		cfg:    cfg,
		cursor: -1,
		now:    time.Now,
		done:   make(chan struct{}),
	}

	if cfg.autoSave {
		m.wg.Add(1)
		go m.autoSaveLoop()
	}

	return m
}

// AddState records a new snapshot at the tail of the timeline.
//
// The payload is encoded (and, above the configured threshold, compressed)
// immediately, so data is deep-copied: later caller mutations cannot reach
// the stored form. If the cursor is not at the tail the redo branch is
// discarded first. Overflowing a budget never fails the add; the eviction
// pass trims the head instead. The only error condition is a payload the
// codec cannot encode.
func (m *Manager[T]) AddState(actionType, description string, data T, elementIDs []string, cat Category) error {
	encoded, err := m.cfg.codec.Encode(data)
	if err != nil {
		return fmt.Errorf("encode state payload: %w", err)
	}
	payload, compressed := m.store(encoded)

	e := &entry{
		id:          uuid.NewString(),
		actionType:  actionType,
		description: description,
		category:    cat.normalize(),
		payload:     payload,
		compressed:  compressed,
		elementIDs:  cloneIDs(elementIDs),
		size:        int64(len(payload)),
		undoable:    true,
	}

	m.mu.Lock()
	e.timestamp = m.nextTimestampLocked()

	if m.grouping {
		m.pending = append(m.pending, e)
		m.mu.Unlock()
		return nil
	}

	added, evicted := m.pushLocked(e)
	canUndo, canRedo := m.canUndoLocked(), m.canRedoLocked()
	m.mu.Unlock()

	m.publish(notify.Event{Kind: notify.EventAdded, StateID: added, CanUndo: canUndo, CanRedo: canRedo})
	if len(evicted) > 0 {
		m.publish(notify.Event{Kind: notify.EventEvicted, StateIDs: evicted, CanUndo: canUndo, CanRedo: canRedo})
	}
	return nil
}

// Mark records a non-undoable checkpoint marker holding the zero payload.
// Markers appear in the history list but are excluded from the undoable
// state count.
func (m *Manager[T]) Mark(description string) error {
	var zero T
	encoded, err := m.cfg.codec.Encode(zero)
	if err != nil {
		return fmt.Errorf("encode marker payload: %w", err)
	}

	e := &entry{
		id:          uuid.NewString(),
		actionType:  "marker",
		description: description,
		category:    CategoryOther,
		payload:     encoded,
		size:        int64(len(encoded)),
	}

	m.mu.Lock()
	e.timestamp = m.nextTimestampLocked()
	added, evicted := m.pushLocked(e)
	canUndo, canRedo := m.canUndoLocked(), m.canRedoLocked()
	m.mu.Unlock()

	m.publish(notify.Event{Kind: notify.EventAdded, StateID: added, CanUndo: canUndo, CanRedo: canRedo})
	if len(evicted) > 0 {
		m.publish(notify.Event{Kind: notify.EventEvicted, StateIDs: evicted, CanUndo: canUndo, CanRedo: canRedo})
	}
	return nil
}

// Undo moves the cursor back one state and returns the state now pointed
// to. Returns ErrNothingToUndo when the cursor is already at the earliest
// retained state or the timeline is empty.
func (m *Manager[T]) Undo() (*State[T], error) {
	m.mu.Lock()
	if m.cursor <= 0 {
		m.mu.Unlock()
		return nil, ErrNothingToUndo
	}

	e := m.entries[m.cursor-1]
	st, err := m.materialize(e)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	m.cursor--
	m.lastAddID = ""
	canUndo, canRedo := m.canUndoLocked(), m.canRedoLocked()
	m.mu.Unlock()

	m.publish(notify.Event{Kind: notify.EventUndone, StateID: st.ID, CanUndo: canUndo, CanRedo: canRedo})
	return st, nil
}

// Redo moves the cursor forward one state and returns it. Returns
// ErrNothingToRedo when the cursor is already at the tail.
func (m *Manager[T]) Redo() (*State[T], error) {
	m.mu.Lock()
	if m.cursor >= len(m.entries)-1 {
		m.mu.Unlock()
		return nil, ErrNothingToRedo
	}

	e := m.entries[m.cursor+1]
	st, err := m.materialize(e)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	m.cursor++
	m.lastAddID = ""
	canUndo, canRedo := m.canUndoLocked(), m.canRedoLocked()
	m.mu.Unlock()

	m.publish(notify.Event{Kind: notify.EventRedone, StateID: st.ID, CanUndo: canUndo, CanRedo: canRedo})
	return st, nil
}

// JumpTo moves the cursor directly to the state with the given ID and
// returns it. Returns ErrStateNotFound if no such state is retained.
func (m *Manager[T]) JumpTo(id string) (*State[T], error) {
	m.mu.Lock()
	idx := -1
	for i, e := range m.entries {
		if e.id == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrStateNotFound, id)
	}

	st, err := m.materialize(m.entries[idx])
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	m.cursor = idx
	m.lastAddID = ""
	canUndo, canRedo := m.canUndoLocked(), m.canRedoLocked()
	m.mu.Unlock()

	m.publish(notify.Event{Kind: notify.EventJumped, StateID: id, CanUndo: canUndo, CanRedo: canRedo})
	return st, nil
}

// CanUndo reports whether an undo step is available.
func (m *Manager[T]) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canUndoLocked()
}

// CanRedo reports whether a redo step is available.
func (m *Manager[T]) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canRedoLocked()
}

// Current returns the state at the cursor, or (nil, nil) when the timeline
// is empty.
func (m *Manager[T]) Current() (*State[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cursor < 0 {
		return nil, nil
	}
	return m.materialize(m.entries[m.cursor])
}

// History returns every retained state in storage order with payloads
// decoded. For display lists prefer Entries, which skips decoding.
func (m *Manager[T]) History() ([]*State[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*State[T], len(m.entries))
	for i, e := range m.entries {
		st, err := m.materialize(e)
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}

// Entries returns the metadata of every retained state in storage order.
func (m *Manager[T]) Entries() []StateInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]StateInfo, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.info()
	}
	return out
}

// Stats summarizes the timeline.
func (m *Manager[T]) Stats() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Statistics{
		TotalStates: len(m.entries),
		MemoryUsage: m.memory,
	}
	if m.cursor >= 0 {
		stats.RedoableStates = len(m.entries) - 1 - m.cursor
		for i := 0; i <= m.cursor; i++ {
			if m.entries[i].undoable {
				stats.UndoableStates++
			}
		}
	}
	return stats
}

// Clear drops every state and resets the cursor to the empty position.
func (m *Manager[T]) Clear() {
	m.mu.Lock()
	m.entries = nil
	m.cursor = -1
	m.memory = 0
	m.grouping = false
	m.pending = nil
	m.lastAddID = ""
	m.mu.Unlock()

	m.publish(notify.Event{Kind: notify.EventCleared})
}

// Close stops the auto-save timer, performing one final save if auto-save
// is enabled. Safe to call more than once.
func (m *Manager[T]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.done)
	m.wg.Wait()

	if m.cfg.autoSave {
		return m.saveOnce()
	}
	return nil
}

// canUndoLocked reports undo availability. The earliest retained state has
// nothing behind it to restore, so it is not itself an undo target.
func (m *Manager[T]) canUndoLocked() bool { return m.cursor > 0 }

func (m *Manager[T]) canRedoLocked() bool { return m.cursor < len(m.entries)-1 }

// nextTimestampLocked returns a creation time that never decreases across
// the sequence of inserted states, even if the wall clock steps backwards.
func (m *Manager[T]) nextTimestampLocked() time.Time {
	ts := m.now()
	if n := len(m.entries); n > 0 && ts.Before(m.entries[n-1].timestamp) {
		ts = m.entries[n-1].timestamp
	}
	if n := len(m.pending); n > 0 && ts.Before(m.pending[n-1].timestamp) {
		ts = m.pending[n-1].timestamp
	}
	return ts
}

// pushLocked appends e to the timeline: truncates the redo branch, applies
// time-window coalescing, advances the cursor, and runs the eviction pass.
// It returns the ID of the entry that now holds the edit and the IDs of any
// evicted entries.
func (m *Manager[T]) pushLocked(e *entry) (string, []string) {
	// Discard the redo branch.
	if m.cursor < len(m.entries)-1 {
		for _, dropped := range m.entries[m.cursor+1:] {
			m.memory -= dropped.size
		}
		m.entries = m.entries[:m.cursor+1]
	}

	// Time-window coalescing with the tail entry.
	if m.cfg.groupSimilar && m.cursor >= 0 {
		tail := m.entries[m.cursor]
		if tail.id == m.lastAddID && tail.undoable && e.undoable &&
			tail.actionType == e.actionType &&
			e.timestamp.Sub(tail.timestamp) <= m.cfg.groupWindow {
			m.memory -= tail.size
			tail.payload = e.payload
			tail.compressed = e.compressed
			tail.size = e.size
			tail.description = e.description
			tail.category = e.category
			tail.timestamp = e.timestamp
			tail.elementIDs = unionIDs(tail.elementIDs, e.elementIDs)
			m.memory += tail.size
			evicted := m.evictLocked()
			return tail.id, evicted
		}
	}

	m.entries = append(m.entries, e)
	m.cursor = len(m.entries) - 1
	m.memory += e.size
	if e.undoable {
		m.lastAddID = e.id
	} else {
		m.lastAddID = ""
	}

	evicted := m.evictLocked()
	return e.id, evicted
}

// evictLocked removes oldest states until both the entry count and memory
// budgets are satisfied. It never removes the state at or after the cursor;
// if the cursor reaches the head with a budget still exceeded, eviction
// stops there.
func (m *Manager[T]) evictLocked() []string {
	var evicted []string
	for len(m.entries) > m.cfg.maxEntries || m.memory > m.cfg.memoryBudget {
		if m.cursor <= 0 {
			break
		}
		head := m.entries[0]
		m.entries = m.entries[1:]
		m.memory -= head.size
		m.cursor--
		evicted = append(evicted, head.id)
	}
	return evicted
}

// store applies the compression policy to an encoded payload. The decision
// is made purely from size. A compression failure or an unprofitable result
// falls back to the uncompressed form; user data is never dropped because
// compression misbehaved.
func (m *Manager[T]) store(encoded []byte) ([]byte, bool) {
	if !m.cfg.compress || len(encoded) < m.cfg.compressionThreshold {
		return encoded, false
	}
	compressed, err := m.cfg.compressor.Compress(encoded)
	if err != nil || len(compressed) >= len(encoded) {
		return encoded, false
	}
	return compressed, true
}

// materialize decodes a stored entry into a State with a fresh payload
// value. A decompression or decode failure is surfaced: the snapshot is
// unusable and the caller must know.
func (m *Manager[T]) materialize(e *entry) (*State[T], error) {
	data := e.payload
	if e.compressed {
		var err error
		data, err = m.cfg.compressor.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrDecompress, e.id, err)
		}
	}

	var value T
	if err := m.cfg.codec.Decode(data, &value); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", e.id, err)
	}

	return &State[T]{
		ID:          e.id,
		ActionType:  e.actionType,
		Description: e.description,
		Category:    e.category,
		Data:        value,
		ElementIDs:  cloneIDs(e.elementIDs),
		Timestamp:   e.timestamp,
		MemorySize:  e.size,
		Undoable:    e.undoable,
		Compressed:  e.compressed,
	}, nil
}

// publish delivers an event if a notifier is configured. Called outside the
// manager lock so observers may call back into the manager.
func (m *Manager[T]) publish(event notify.Event) {
	if m.cfg.notifier != nil {
		m.cfg.notifier.Publish(event)
	}
}
