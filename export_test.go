package timeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/easelhq/timeline/codec"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestManager(WithCompression(64))

	src.AddState("create", "Add rect", map[string]any{"shape": "rect"}, []string{"rect-1"}, CategoryCreate)
	src.AddState("style", "Paint", map[string]any{"fill": strings.Repeat("red ", 100)}, []string{"rect-1"}, CategoryStyle)
	src.AddState("move", "Move", map[string]any{"x": "5"}, []string{"rect-1"}, CategoryTransform)
	src.Undo() // cursor mid-timeline

	data, err := src.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := newTestManager(WithCompression(64))
	if err := dst.Import(data); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	srcEntries, dstEntries := src.Entries(), dst.Entries()
	if len(dstEntries) != len(srcEntries) {
		t.Fatalf("entries = %d, want %d", len(dstEntries), len(srcEntries))
	}
	for i := range srcEntries {
		if dstEntries[i].ID != srcEntries[i].ID {
			t.Errorf("entry %d id = %q, want %q", i, dstEntries[i].ID, srcEntries[i].ID)
		}
		if dstEntries[i].MemorySize != srcEntries[i].MemorySize {
			t.Errorf("entry %d size = %d, want %d", i, dstEntries[i].MemorySize, srcEntries[i].MemorySize)
		}
		if dstEntries[i].Compressed != srcEntries[i].Compressed {
			t.Errorf("entry %d compressed flag differs", i)
		}
		if !dstEntries[i].Timestamp.Equal(srcEntries[i].Timestamp) {
			t.Errorf("entry %d timestamp differs", i)
		}
	}

	// Cursor position survives.
	srcCur, _ := src.Current()
	dstCur, err := dst.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if dstCur.ID != srcCur.ID {
		t.Errorf("cursor at %q, want %q", dstCur.ID, srcCur.ID)
	}
	if dst.CanUndo() != src.CanUndo() || dst.CanRedo() != src.CanRedo() {
		t.Error("navigation flags differ after round trip")
	}

	// Payload contents survive, including the compressed entry.
	srcStates, _ := src.History()
	dstStates, err := dst.History()
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	for i := range srcStates {
		if !reflect.DeepEqual(dstStates[i].Data, srcStates[i].Data) {
			t.Errorf("entry %d data differs after round trip", i)
		}
	}
}

func TestImportMalformed(t *testing.T) {
	m := newTestManager()
	addSimple(t, m, "a")

	cases := []struct {
		name string
		data string
	}{
		{"garbage", "not json at all"},
		{"wrong version", `{"version":99,"codec":"json","compressor":"zstd","config":{},"cursor":-1,"entries":[]}`},
		{"cursor out of range", `{"version":1,"codec":"json","compressor":"zstd","config":{},"cursor":3,"entries":[]}`},
		{"missing id", `{"version":1,"codec":"json","compressor":"zstd","config":{},"cursor":0,"entries":[{"id":"","action_type":"a","category":"other","payload":"e30=","timestamp":"2026-01-01T00:00:00Z","undoable":true}]}`},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Import([]byte(tt.data))
			if !errors.Is(err, ErrMalformedImport) {
				t.Errorf("Import = %v, want ErrMalformedImport", err)
			}
		})
	}

	// A failed import must not touch the existing timeline.
	if got := len(m.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1 after failed imports", got)
	}
	st, _ := m.Current()
	if st.ActionType != "a" {
		t.Errorf("current = %q, want %q", st.ActionType, "a")
	}
}

func TestImportCodecMismatch(t *testing.T) {
	src := New[map[string]any](WithCodec(codec.Msgpack{}))
	if err := src.AddState("a", "a", map[string]any{"k": "v"}, nil, CategoryModify); err != nil {
		t.Fatalf("AddState failed: %v", err)
	}
	data, err := src.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := newTestManager() // json codec
	if err := dst.Import(data); !errors.Is(err, ErrMalformedImport) {
		t.Errorf("Import with mismatched codec = %v, want ErrMalformedImport", err)
	}
}

func TestImportDuplicateIDs(t *testing.T) {
	raw := `{"version":1,"codec":"json","compressor":"zstd","config":{},"cursor":1,"entries":[` +
		`{"id":"dup","action_type":"a","category":"other","payload":"e30=","timestamp":"2026-01-01T00:00:00Z","undoable":true},` +
		`{"id":"dup","action_type":"b","category":"other","payload":"e30=","timestamp":"2026-01-01T00:00:01Z","undoable":true}]}`

	dst := newTestManager()
	if err := dst.Import([]byte(raw)); !errors.Is(err, ErrMalformedImport) {
		t.Errorf("Import with duplicate ids = %v, want ErrMalformedImport", err)
	}
}

func TestPeekExport(t *testing.T) {
	m := newTestManager()
	addSimple(t, m, "a")
	data, err := m.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	version, codecName, compressorName, err := PeekExport(data)
	if err != nil {
		t.Fatalf("PeekExport failed: %v", err)
	}
	if version != 1 || codecName != "json" || compressorName != "zstd" {
		t.Errorf("peek = (%d, %q, %q)", version, codecName, compressorName)
	}

	if _, _, _, err := PeekExport([]byte("junk")); !errors.Is(err, ErrMalformedImport) {
		t.Errorf("PeekExport junk = %v, want ErrMalformedImport", err)
	}
}

func TestExportEmpty(t *testing.T) {
	m := newTestManager()
	data, err := m.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := newTestManager()
	if err := dst.Import(data); err != nil {
		t.Fatalf("Import of empty timeline failed: %v", err)
	}
	if got := dst.Stats().TotalStates; got != 0 {
		t.Errorf("states = %d, want 0", got)
	}
}
