// Package core provides the main symlog client: it wires the insight
// engine, the persistence backend, and the optional text-generation
// collaborator together behind one facade.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested memory was not found.
	ErrNotFound = errors.New("memory not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates that connecting to the storage backend failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageOperation indicates that a storage operation failed. The
	// in-memory computation that preceded it is retained; only durability
	// of the update is at risk.
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrLLMOperation indicates that a text-generation operation failed.
	ErrLLMOperation = errors.New("llm operation failed")
)

// EngineError wraps errors with operation context, making failures
// attributable to a specific client operation.
//
// Error() formats as "symlog: <Op>: <Err>".
type EngineError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns the formatted error message.
func (e *EngineError) Error() string {
	return fmt.Sprintf("symlog: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError wraps err with operation context. Returns nil when err is
// nil, allowing unconditional wrapping at return sites.
func NewEngineError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Op: op, Err: err}
}
