package models

import (
	"fmt"
	"time"
)

// ValidationError means the input was rejected before any I/O happened:
// malformed article number, wrong file type, oversized upload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// LoadError means a remote image or product fetch failed or decoded badly
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// TimeoutError means a load did not complete within its bound
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("load of %s timed out after %s", e.URL, e.Timeout)
}

// EncodeError means local rasterization or encoding failed
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode image: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// PersistError means an external storage write failed
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// NotFoundError means the remote catalog lookup returned no match
type NotFoundError struct {
	ArticleID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("article %s not found", e.ArticleID)
}
