package timeline

import "errors"

// Errors returned by timeline operations.
var (
	// ErrNothingToUndo indicates the cursor is already at the earliest
	// retained state.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the cursor is already at the tail.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrStateNotFound indicates no state with the given ID exists.
	ErrStateNotFound = errors.New("state not found")

	// ErrDecompress indicates a stored payload could not be decompressed.
	ErrDecompress = errors.New("decompress state payload")

	// ErrMalformedImport indicates the serialized history could not be
	// parsed or failed validation. The timeline is left untouched.
	ErrMalformedImport = errors.New("malformed history export")
)
