package insight

import "errors"

// Predefined errors for the insight engine.
var (
	// ErrUnknownKind indicates an unrecognized memory kind.
	ErrUnknownKind = errors.New("unknown memory kind")

	// ErrIncompleteMemory indicates that the fields required by a memory's
	// kind are missing.
	ErrIncompleteMemory = errors.New("incomplete memory for kind")

	// ErrUnknownFeedback indicates an unrecognized feedback signal.
	ErrUnknownFeedback = errors.New("unknown feedback signal")

	// ErrMemoryNotFound indicates that no memory matches the given identity.
	ErrMemoryNotFound = errors.New("memory not found")
)
