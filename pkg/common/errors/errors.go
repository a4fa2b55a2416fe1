package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the sqlflow library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCancelled indicates that a future was cancelled before it produced a value
	ErrCancelled = errors.New("operation cancelled")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNoRows indicates that a query expected at least one row and found none
	ErrNoRows = errors.New("no rows in result")
)

// Kind classifies a failure by where it originated.
type Kind int

const (
	// KindUnknown is used for failures that carry no classification.
	KindUnknown Kind = iota

	// KindAcquire is a failure to open a connection or create a statement.
	KindAcquire

	// KindConfigure is a failure while configuring a connection or statement.
	KindConfigure

	// KindRead is a failure reading cursor metadata or row values.
	KindRead

	// KindExecute is a failure raised by a caller callback or statement execution.
	KindExecute

	// KindProducer is a producer-task failure observed by a stream consumer.
	KindProducer

	// KindInterrupted is a wait that was abandoned because its context ended.
	KindInterrupted
)

func (k Kind) String() string {
	switch k {
	case KindAcquire:
		return "acquire"
	case KindConfigure:
		return "configure"
	case KindRead:
		return "read"
	case KindExecute:
		return "execute"
	case KindProducer:
		return "producer"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// ValidationError represents a configuration validation failure with
// the offending field and value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap makes every ValidationError match ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// NewValidationError creates a ValidationError.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint sets a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// OperationError is the uniform failure produced by asynchronous operations.
// It carries the failure Kind, the operation that failed, the original cause
// and an optional human-readable context.
type OperationError struct {
	Kind      Kind
	Module    string
	Operation string
	Cause     error
	Context   string
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// NewOperationError creates an unclassified OperationError.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext sets the context string and returns the same error for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

// Wrap classifies cause as kind. It returns nil for a nil cause. A cause that
// already carries a Kind is wrapped but keeps that Kind visible to KindOf.
func Wrap(kind Kind, module, operation string, cause error) error {
	if cause == nil {
		return nil
	}
	return &OperationError{
		Kind:      kind,
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// Wrapf is Wrap with a formatted context string.
func Wrapf(kind Kind, module, operation string, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	return &OperationError{
		Kind:      kind,
		Module:    module,
		Operation: operation,
		Cause:     cause,
		Context:   fmt.Sprintf(format, args...),
	}
}

// KindOf returns the innermost classified Kind in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	kind := KindUnknown
	for err != nil {
		var opErr *OperationError
		if !errors.As(err, &opErr) {
			break
		}
		if opErr.Kind != KindUnknown {
			kind = opErr.Kind
		}
		err = opErr.Cause
	}
	return kind
}

// IsKind reports whether any OperationError in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var opErr *OperationError
		if !errors.As(err, &opErr) {
			return false
		}
		if opErr.Kind == kind {
			return true
		}
		err = opErr.Cause
	}
	return false
}

// IsRetryable returns true if the error indicates a condition that might
// be resolved by retrying the operation. No retry happens inside the library.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || IsKind(err, KindInterrupted)
}
