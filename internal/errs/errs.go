// Package errs defines the error taxonomy shared by every core operation.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error so adapters can react without string matching.
type Kind string

const (
	// InvalidInput is caller-fixable: empty query, bad regex, unknown enum value.
	InvalidInput Kind = "invalid_input"
	// NoIndex means the repository has no index yet; callers should suggest indexFull.
	NoIndex Kind = "no_index"
	// ModelMismatch means the query-time Embedder disagrees with IndexMetadata.
	ModelMismatch Kind = "model_mismatch"
	// SchemaMismatch means the stored schema version is incompatible; rebuild is required.
	SchemaMismatch Kind = "schema_mismatch"
	// DiscoveryError means the root is missing or unreadable.
	DiscoveryError Kind = "discovery_error"
	// EmbedderError wraps a failure from the Embedder; may be transient or fatal.
	EmbedderError Kind = "embedder_error"
	// StoreError is fatal to the current run.
	StoreError Kind = "store_error"
	// Cancelled acknowledges cooperative cancellation.
	Cancelled Kind = "cancelled"
	// IndexCorrupted means stored vectors cannot be read back at the expected dimension.
	IndexCorrupted Kind = "index_corrupted"
)

// Error is the concrete error type returned by core operations. It carries a
// Kind for programmatic dispatch and wraps an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error carrying cause, unless cause is already an *Error
// of the same kind (in which case it is returned unchanged to avoid nesting).
func Wrap(kind Kind, message string, cause error) *Error {
	var existing *Error
	if errors.As(cause, &existing) && existing.Kind == kind {
		return existing
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
