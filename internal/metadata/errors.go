package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderNotFound indicates no provider matches the requested ID or kind.
	ErrProviderNotFound = errors.New("metadata provider not found")

	// ErrMatchNotFound indicates a remote ID resolved to no catalog content.
	ErrMatchNotFound = errors.New("no match for remote id")

	// ErrAlreadyImported indicates a non-refresh import hit existing content.
	ErrAlreadyImported = errors.New("metadata already imported")

	// ErrInvalidRemoteID indicates a malformed composite remote ID.
	// This is a caller error, not a provider failure.
	ErrInvalidRemoteID = errors.New("invalid remote id")
)

// ProviderError wraps a failure from an external catalog. It is distinct
// from StoreError so callers can retry only the provider call.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// StoreError wraps a persistence failure during metadata resolution.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("metadata store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
