package timeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/easelhq/timeline/notify"
)

// exportVersion is the current export document format version.
const exportVersion = 1

// exportDocument is the serialized form of a whole timeline. Payloads stay
// in their stored (possibly compressed) form; encoding/json base64-encodes
// them. Round-tripping through Export and Import is lossless, including
// the cursor position.
type exportDocument struct {
	Version    int           `json:"version"`
	Codec      string        `json:"codec"`
	Compressor string        `json:"compressor"`
	Config     exportConfig  `json:"config"`
	Cursor     int           `json:"cursor"`
	Entries    []exportEntry `json:"entries"`
}

type exportConfig struct {
	MaxEntries           int   `json:"max_entries"`
	MemoryBudget         int64 `json:"memory_budget"`
	CompressionEnabled   bool  `json:"compression_enabled"`
	CompressionThreshold int   `json:"compression_threshold"`
	GroupSimilar         bool  `json:"group_similar"`
	GroupWindowMS        int64 `json:"group_window_ms"`
}

type exportEntry struct {
	ID          string    `json:"id"`
	ActionType  string    `json:"action_type"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Payload     []byte    `json:"payload"`
	Compressed  bool      `json:"compressed"`
	ElementIDs  []string  `json:"element_ids,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Undoable    bool      `json:"undoable"`
}

// Export serializes the whole timeline, cursor, and configuration into a
// versioned document.
func (m *Manager[T]) Export() ([]byte, error) {
	m.mu.Lock()
	doc := exportDocument{
		Version:    exportVersion,
		Codec:      m.cfg.codec.Name(),
		Compressor: m.cfg.compressor.Name(),
		Config: exportConfig{
			MaxEntries:           m.cfg.maxEntries,
			MemoryBudget:         m.cfg.memoryBudget,
			CompressionEnabled:   m.cfg.compress,
			CompressionThreshold: m.cfg.compressionThreshold,
			GroupSimilar:         m.cfg.groupSimilar,
			GroupWindowMS:        m.cfg.groupWindow.Milliseconds(),
		},
		Cursor:  m.cursor,
		Entries: make([]exportEntry, len(m.entries)),
	}
	for i, e := range m.entries {
		doc.Entries[i] = exportEntry{
			ID:          e.id,
			ActionType:  e.actionType,
			Description: e.description,
			Category:    string(e.category),
			Payload:     e.payload,
			Compressed:  e.compressed,
			ElementIDs:  cloneIDs(e.elementIDs),
			Timestamp:   e.timestamp,
			Undoable:    e.undoable,
		}
	}
	m.mu.Unlock()

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal export document: %w", err)
	}
	return data, nil
}

// Import replaces the entire timeline and cursor with the contents of a
// previously exported document. The replacement is all-or-nothing: on any
// parse or validation failure the error wraps ErrMalformedImport and the
// existing timeline is left untouched.
//
// The manager keeps its own configuration; the document's embedded config
// is informational. The document must have been produced with the same
// codec and compressor, since stored payloads are opaque to everything
// else.
func (m *Manager[T]) Import(data []byte) error {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	if doc.Version != exportVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedImport, doc.Version)
	}
	if doc.Codec != m.cfg.codec.Name() {
		return fmt.Errorf("%w: codec mismatch: document %q, manager %q",
			ErrMalformedImport, doc.Codec, m.cfg.codec.Name())
	}
	if doc.Compressor != m.cfg.compressor.Name() {
		return fmt.Errorf("%w: compressor mismatch: document %q, manager %q",
			ErrMalformedImport, doc.Compressor, m.cfg.compressor.Name())
	}
	if doc.Cursor < -1 || doc.Cursor >= len(doc.Entries) {
		return fmt.Errorf("%w: cursor %d out of range for %d entries",
			ErrMalformedImport, doc.Cursor, len(doc.Entries))
	}
	if len(doc.Entries) > 0 && doc.Cursor < 0 {
		return fmt.Errorf("%w: cursor unset for non-empty timeline", ErrMalformedImport)
	}

	entries := make([]*entry, len(doc.Entries))
	seen := make(map[string]struct{}, len(doc.Entries))
	var memory int64
	var prev time.Time
	for i, de := range doc.Entries {
		if de.ID == "" {
			return fmt.Errorf("%w: entry %d has no id", ErrMalformedImport, i)
		}
		if _, dup := seen[de.ID]; dup {
			return fmt.Errorf("%w: duplicate state id %s", ErrMalformedImport, de.ID)
		}
		seen[de.ID] = struct{}{}
		if de.Timestamp.Before(prev) {
			return fmt.Errorf("%w: timestamps not monotonic at entry %d", ErrMalformedImport, i)
		}
		prev = de.Timestamp

		e := &entry{
			id:          de.ID,
			actionType:  de.ActionType,
			description: de.Description,
			category:    Category(de.Category).normalize(),
			payload:     de.Payload,
			compressed:  de.Compressed,
			elementIDs:  cloneIDs(de.ElementIDs),
			timestamp:   de.Timestamp,
			size:        int64(len(de.Payload)),
			undoable:    de.Undoable,
		}
		entries[i] = e
		memory += e.size
	}

	m.mu.Lock()
	m.entries = entries
	m.cursor = doc.Cursor
	m.memory = memory
	m.grouping = false
	m.pending = nil
	m.lastAddID = ""
	// The imported timeline answers to this manager's budgets, not to
	// whatever produced it.
	evicted := m.evictLocked()
	canUndo, canRedo := m.canUndoLocked(), m.canRedoLocked()
	m.mu.Unlock()

	m.publish(notify.Event{Kind: notify.EventImported, CanUndo: canUndo, CanRedo: canRedo})
	if len(evicted) > 0 {
		m.publish(notify.Event{Kind: notify.EventEvicted, StateIDs: evicted, CanUndo: canUndo, CanRedo: canRedo})
	}
	return nil
}

// PeekExport reads only the header of an export document: its version,
// codec, and compressor names. Tools use it to construct a compatible
// manager before importing.
func PeekExport(data []byte) (version int, codecName, compressorName string, err error) {
	var head struct {
		Version    int    `json:"version"`
		Codec      string `json:"codec"`
		Compressor string `json:"compressor"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, "", "", fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}
	return head.Version, head.Codec, head.Compressor, nil
}
