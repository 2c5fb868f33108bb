package timeline

import (
	"time"
)

// Category classifies the edit that produced a state. Categories drive icon
// and color coding in history panels; they never affect engine behavior.
type Category string

// The closed set of state categories.
const (
	CategoryCreate    Category = "create"
	CategoryModify    Category = "modify"
	CategoryDelete    Category = "delete"
	CategoryTransform Category = "transform"
	CategoryGroup     Category = "group"
	CategoryUngroup   Category = "ungroup"
	CategoryLayer     Category = "layer"
	CategoryStyle     Category = "style"
	CategoryAnimation Category = "animation"
	CategoryOther     Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCreate, CategoryModify, CategoryDelete, CategoryTransform,
		CategoryGroup, CategoryUngroup, CategoryLayer, CategoryStyle,
		CategoryAnimation, CategoryOther:
		return true
	}
	return false
}

// normalize coerces unknown categories to CategoryOther so that AddState
// stays total regardless of caller input.
func (c Category) normalize() Category {
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// entry is the stored form of one timeline state. The payload holds the
// encoded (and possibly compressed) snapshot; it is never aliased to
// caller-owned memory.
type entry struct {
	id          string
	actionType  string
	description string
	category    Category
	payload     []byte
	compressed  bool
	elementIDs  []string
	timestamp   time.Time
	size        int64
	undoable    bool
}

// info returns the read-only metadata view of the entry.
func (e *entry) info() StateInfo {
	return StateInfo{
		ID:          e.id,
		ActionType:  e.actionType,
		Description: e.description,
		Category:    e.category,
		ElementIDs:  cloneIDs(e.elementIDs),
		Timestamp:   e.timestamp,
		MemorySize:  e.size,
		Undoable:    e.undoable,
		Compressed:  e.compressed,
	}
}

// State is one decoded snapshot returned to the host. Data is a fresh value
// decoded from the stored form; the host may mutate it freely.
type State[T any] struct {
	// ID uniquely identifies this state. IDs are never reused.
	ID string

	// ActionType is the machine-readable tag of the edit, e.g. "elements_update".
	ActionType string

	// Description is the human-readable label shown in history panels.
	Description string

	// Category classifies the edit.
	Category Category

	// Data is the restored application state payload.
	Data T

	// ElementIDs names the elements this state's edit touched.
	ElementIDs []string

	// Timestamp is the creation time of the state.
	Timestamp time.Time

	// MemorySize is the stored (post-compression) payload size in bytes.
	MemorySize int64

	// Undoable is false for synthetic markers such as named checkpoints.
	Undoable bool

	// Compressed reports whether the payload is stored compressed.
	Compressed bool
}

// StateInfo is the metadata of a state without its payload. Use it for
// history lists where decoding every snapshot would be wasteful.
type StateInfo struct {
	ID          string
	ActionType  string
	Description string
	Category    Category
	ElementIDs  []string
	Timestamp   time.Time
	MemorySize  int64
	Undoable    bool
	Compressed  bool
}

// Statistics summarizes the timeline for status displays.
type Statistics struct {
	// TotalStates is the number of retained states.
	TotalStates int

	// UndoableStates counts undoable states at or behind the cursor.
	UndoableStates int

	// RedoableStates counts states ahead of the cursor.
	RedoableStates int

	// MemoryUsage is the aggregate stored payload size in bytes.
	MemoryUsage int64
}

// cloneIDs copies an element ID list so stored entries never alias
// caller-owned slices.
func cloneIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// unionIDs merges two ID lists preserving first-seen order.
func unionIDs(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
