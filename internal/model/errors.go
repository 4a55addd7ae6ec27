package model

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to classify any error in the system.
var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrSynthesisUnavailable = errors.New("synthesis unavailable")
)

// ValidationError represents missing or malformed caller input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError represents a missing session transcript or archive entry
type NotFoundError struct {
	What string // "journal", "messages", "object"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found for %s", e.What, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError represents an unreachable or failing storage backend
type StorageError struct {
	Op  string // "append", "read", "upsert", ...
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// SynthesisError represents a failed or timed-out text generation call
type SynthesisError struct {
	Provider string
	Err      error
}

func (e *SynthesisError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("synthesis error: %v", e.Err)
	}
	return fmt.Sprintf("synthesis error [%s]: %v", e.Provider, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

func (e *SynthesisError) Is(target error) bool {
	return target == ErrSynthesisUnavailable
}
