package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// File persists the latest export document to a single file. Writes go
// through a temp file and rename, so a crash mid-save never leaves a
// truncated document behind.
type File struct {
	path string
}

// NewFile creates a file sink writing to path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the target file path.
func (f *File) Path() string { return f.path }

// Save implements timeline.Sink.
func (f *File) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".timeline-save-*")
	if err != nil {
		return fmt.Errorf("create temp save file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close save file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace save file: %w", err)
	}
	return nil
}

// Load reads the most recent save. Returns ErrNoSaves if none exists.
func (f *File) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, ErrNoSaves
	}
	if err != nil {
		return nil, fmt.Errorf("read save file: %w", err)
	}
	return data, nil
}
