package persist

import "errors"

// Errors returned by persist sinks.
var (
	// ErrNoSaves indicates no saved history exists yet.
	ErrNoSaves = errors.New("no saved history")
)
