package errors

import (
	"fmt"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures specification validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConversionError indicates an expected cell value could not be converted to
// the semantic type of the computed actual value. It is reported as an
// exception on the owning cell, never as an assertion failure.
type ConversionError struct {
	Cell  string
	Value string
	Type  string
	Err   error
}

// NewConversionError constructs a ConversionError for the given cell.
func NewConversionError(cell, value, targetType string, err error) error {
	return &ConversionError{Cell: cell, Value: value, Type: targetType, Err: err}
}

func (e *ConversionError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("conversion error: cell %q: cannot convert %q to %s", e.Cell, e.Value, e.Type)
}

// Unwrap exposes the underlying error.
func (e *ConversionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ServiceNotFoundError indicates a step requested a collaborator the
// execution context does not provide.
type ServiceNotFoundError struct {
	Name string
}

// NewServiceNotFoundError constructs a ServiceNotFoundError.
func NewServiceNotFoundError(name string) error {
	return &ServiceNotFoundError{Name: name}
}

func (e *ServiceNotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("service not found: %q", e.Name)
}

// ContextCreationError represents a failure to build the execution context
// for an attempt. It aborts the attempt before any step runs and poisons the
// engine.
type ContextCreationError struct {
	SpecID string
	Err    error
}

// NewContextCreationError constructs a ContextCreationError.
func NewContextCreationError(specID string, err error) error {
	return &ContextCreationError{SpecID: specID, Err: err}
}

func (e *ContextCreationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("context creation failed for spec %s: %v", e.SpecID, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ContextCreationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CatastrophicError represents a fault that escaped the traversal loop
// itself. The remainder of the attempt is abandoned and the engine is
// poisoned.
type CatastrophicError struct {
	SpecID string
	Stage  string
	Err    error
}

// NewCatastrophicError constructs a CatastrophicError tagged with the stage
// the fault surfaced in.
func NewCatastrophicError(specID, stage string, err error) error {
	return &CatastrophicError{SpecID: specID, Stage: stage, Err: err}
}

func (e *CatastrophicError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("catastrophic failure [%s] in spec %s: %v", e.Stage, e.SpecID, e.Err)
}

// Unwrap exposes the underlying error.
func (e *CatastrophicError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
