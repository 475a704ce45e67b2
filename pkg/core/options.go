package core

import "github.com/symlog/symlog-go/pkg/insight"

// MemoriesOptions contains options for browsing the memory store.
type MemoriesOptions struct {
	// Kind filters to one memory kind. Empty means all kinds.
	Kind insight.MemoryKind

	// IncludeInactive includes denied and dismissed memories.
	IncludeInactive bool

	// IncludeSuppressed includes memories still below the minimum
	// occurrence threshold.
	IncludeSuppressed bool

	// Limit caps the number of returned memories. Zero means no cap.
	Limit int
}

// MemoriesOption configures a Memories call.
type MemoriesOption func(*MemoriesOptions)

// WithKind filters the browse results to one memory kind.
func WithKind(kind insight.MemoryKind) MemoriesOption {
	return func(opts *MemoriesOptions) {
		opts.Kind = kind
	}
}

// WithInactive includes denied and dismissed memories in the results.
func WithInactive() MemoriesOption {
	return func(opts *MemoriesOptions) {
		opts.IncludeInactive = true
	}
}

// WithSuppressed includes below-threshold memories in the results.
func WithSuppressed() MemoriesOption {
	return func(opts *MemoriesOptions) {
		opts.IncludeSuppressed = true
	}
}

// WithLimit caps the number of returned memories.
func WithLimit(limit int) MemoriesOption {
	return func(opts *MemoriesOptions) {
		opts.Limit = limit
	}
}

func applyMemoriesOptions(opts []MemoriesOption) *MemoriesOptions {
	options := &MemoriesOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
