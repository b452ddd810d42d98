package flow

import "errors"

// Failure categories. Callers wrap these with context and test with
// errors.Is; none of them is fatal.
var (
	// ErrStaleReference: a path held in model state no longer exists.
	ErrStaleReference = errors.New("stale reference")
	// ErrInvalidTarget: a user-entered path does not exist or is not a folder.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrPersistenceCorruption: a persisted record could not be read.
	ErrPersistenceCorruption = errors.New("persistence corruption")
	// ErrExternalToolFailure: a shell, archive or office helper failed.
	ErrExternalToolFailure = errors.New("external tool failure")
)
