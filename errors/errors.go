/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when no record exists for a key or hash field
	ErrNotFound = errors.New("record not found")

	// ErrMultipleFound is returned when a single-record lookup matches more than one record
	ErrMultipleFound = errors.New("multiple records found")

	// ErrKeyResolution is returned when no primary key strategy yields a value
	ErrKeyResolution = errors.New("primary key could not be resolved")

	// ErrUnsupportedLookup is returned for an unknown filter suffix
	ErrUnsupportedLookup = errors.New("unsupported lookup")

	// ErrInvalidInput is returned when validation of a model fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackend is returned when the key-value backend fails
	ErrBackend = errors.New("backend failure")

	// ErrStrictPerformance is returned when a full scan is attempted on a strict model
	ErrStrictPerformance = errors.New("full scan not allowed")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Type)
	}
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MultipleFoundError represents a single-record query that matched several records
type MultipleFoundError struct {
	Type  string
	Count int
}

func (e *MultipleFoundError) Error() string {
	return fmt.Sprintf("%s query matched %d records, expected one", e.Type, e.Count)
}

func (e *MultipleFoundError) Is(target error) bool {
	return target == ErrMultipleFound
}

// KeyResolutionError is returned when neither pk, id nor the unique-together
// fields of an instance produce a non-empty key
type KeyResolutionError struct {
	Type string
}

func (e *KeyResolutionError) Error() string {
	return fmt.Sprintf("%s: no pk, id or unique-together value to build a primary key from", e.Type)
}

func (e *KeyResolutionError) Is(target error) bool {
	return target == ErrKeyResolution
}

// UnsupportedLookupError represents a filter with an unknown comparison suffix
type UnsupportedLookupError struct {
	Filter string
	Suffix string
}

func (e *UnsupportedLookupError) Error() string {
	return fmt.Sprintf("unsupported lookup %q in filter %q", e.Suffix, e.Filter)
}

func (e *UnsupportedLookupError) Is(target error) bool {
	return target == ErrUnsupportedLookup
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BackendError wraps a failure reported by the key-value backend
type BackendError struct {
	Op  string
	Key string
	Err error
}

func (e *BackendError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("backend %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// StrictPerformanceError is returned when a scan-based query runs against a
// model that only allows primary key access
type StrictPerformanceError struct {
	Type      string
	Operation string
}

func (e *StrictPerformanceError) Error() string {
	return fmt.Sprintf("%s: %s requires a full scan, which is disabled for this model", e.Type, e.Operation)
}

func (e *StrictPerformanceError) Is(target error) bool {
	return target == ErrStrictPerformance
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewMultipleFoundError creates a new MultipleFoundError
func NewMultipleFoundError(entityType string, count int) error {
	return &MultipleFoundError{Type: entityType, Count: count}
}

// NewKeyResolutionError creates a new KeyResolutionError
func NewKeyResolutionError(entityType string) error {
	return &KeyResolutionError{Type: entityType}
}

// NewUnsupportedLookupError creates a new UnsupportedLookupError
func NewUnsupportedLookupError(filter, suffix string) error {
	return &UnsupportedLookupError{Filter: filter, Suffix: suffix}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// WrapValidationError turns a codec or model validation failure into a ValidationError
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &ValidationError{Message: err.Error(), Err: err}
}

// NewBackendError wraps err as a BackendError, nil stays nil
func NewBackendError(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Key: key, Err: err}
}

// NewStrictPerformanceError creates a new StrictPerformanceError
func NewStrictPerformanceError(entityType, operation string) error {
	return &StrictPerformanceError{Type: entityType, Operation: operation}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMultipleFound checks if an error is a multiple found error
func IsMultipleFound(err error) bool {
	return errors.Is(err, ErrMultipleFound)
}

// IsKeyResolution checks if an error is a key resolution error
func IsKeyResolution(err error) bool {
	return errors.Is(err, ErrKeyResolution)
}

// IsUnsupportedLookup checks if an error is an unsupported lookup error
func IsUnsupportedLookup(err error) bool {
	return errors.Is(err, ErrUnsupportedLookup)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsBackendError checks if an error came from the backend
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackend)
}

// IsStrictPerformance checks if an error is a strict performance error
func IsStrictPerformance(err error) bool {
	return errors.Is(err, ErrStrictPerformance)
}
