// ABOUTME: Custom error types for the core business logic
// ABOUTME: Provides structured errors that map 1:1 onto API responses

package errors

import (
	"errors"
	"fmt"
)

// InvalidReferenceError is returned when an asset reference fails validation
// (traversal tokens, disallowed separators, empty names).
type InvalidReferenceError struct {
	Reference string
	Reason    string
}

// Error implements the error interface
func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Reference, e.Reason)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UnexpectedIOError is a filesystem failure other than absence
type UnexpectedIOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *UnexpectedIOError) Error() string {
	return fmt.Sprintf("unexpected I/O error during %s of %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *UnexpectedIOError) Unwrap() error {
	return e.Err
}

// ChannelDecodeError is recorded when a side-channel payload cannot be decoded
type ChannelDecodeError struct {
	Topic  string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ChannelDecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to decode %s payload: %s: %v", e.Topic, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to decode %s payload: %s", e.Topic, e.Reason)
}

// Unwrap returns the underlying error
func (e *ChannelDecodeError) Unwrap() error {
	return e.Err
}

// IsInvalidReference checks if an error is an InvalidReferenceError
func IsInvalidReference(err error) bool {
	var target *InvalidReferenceError
	return errors.As(err, &target)
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsUnexpectedIO checks if an error is an UnexpectedIOError
func IsUnexpectedIO(err error) bool {
	var target *UnexpectedIOError
	return errors.As(err, &target)
}

// IsChannelDecode checks if an error is a ChannelDecodeError
func IsChannelDecode(err error) bool {
	var target *ChannelDecodeError
	return errors.As(err, &target)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
