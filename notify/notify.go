// Package notify delivers history change events to interested observers.
//
// The host UI subscribes to keep its undo/redo controls in sync with the
// timeline: every event carries the CanUndo/CanRedo flags computed at the
// moment the change was applied, so subscribers never have to call back
// into the manager from inside a callback.
package notify

import (
	"sync"
)

// EventKind identifies what changed in the timeline.
type EventKind int

const (
	// EventAdded indicates a new state was appended (or coalesced into the tail).
	EventAdded EventKind = iota

	// EventUndone indicates the cursor moved back one state.
	EventUndone

	// EventRedone indicates the cursor moved forward one state.
	EventRedone

	// EventJumped indicates the cursor moved to an arbitrary state.
	EventJumped

	// EventEvicted indicates oldest states were dropped to satisfy budgets.
	EventEvicted

	// EventCleared indicates the whole timeline was dropped.
	EventCleared

	// EventImported indicates the timeline was replaced by an import.
	EventImported
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventUndone:
		return "undone"
	case EventRedone:
		return "redone"
	case EventJumped:
		return "jumped"
	case EventEvicted:
		return "evicted"
	case EventCleared:
		return "cleared"
	case EventImported:
		return "imported"
	default:
		return "unknown"
	}
}

// Event describes a single timeline change.
type Event struct {
	// Kind is the type of change.
	Kind EventKind

	// StateID is the state the change concerns. Empty for cleared and
	// imported events.
	StateID string

	// StateIDs lists all affected states for evicted events.
	StateIDs []string

	// CanUndo and CanRedo reflect the timeline immediately after the change.
	CanUndo bool
	CanRedo bool
}

// Observer is called for every published event.
type Observer func(Event)

// Subscription represents an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier fans events out to subscribed observers. Delivery is synchronous
// and happens outside the manager's lock, so observers may call back into
// the manager.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]Observer
	nextID    uint64
}

// New creates an empty Notifier.
func New() *Notifier {
	return &Notifier{
		observers: make(map[uint64]Observer),
	}
}

// Subscribe registers an observer for all events.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = observer

	return &Subscription{id: id, notifier: n}
}

// Publish delivers an event to every observer.
func (n *Notifier) Publish(event Event) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.observers))
	for _, obs := range n.observers {
		observers = append(observers, obs)
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(event)
	}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}
