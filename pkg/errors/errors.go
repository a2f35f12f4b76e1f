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

// ValidationError captures configuration validation issues.
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

// StageError reports a fatal failure inside a provisioning stage. Step names
// the operation inside the stage that failed, when known.
type StageError struct {
	Stage string
	Step  string
	Err   error
}

// NewStageError constructs a StageError for the given stage and step.
func NewStageError(stage, step string, err error) error {
	return &StageError{Stage: stage, Step: step, Err: err}
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Stage != "" && e.Step != "":
		return fmt.Sprintf("stage %s failed at %s: %v", e.Stage, e.Step, e.Err)
	case e.Stage != "":
		return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
	default:
		return fmt.Sprintf("stage failed: %v", e.Err)
	}
}

// Unwrap exposes the root error.
func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// LockError indicates another provisioning run holds the host lock.
type LockError struct {
	Path string
	Err  error
}

// NewLockError constructs a LockError for the lock file at path.
func NewLockError(path string, err error) error {
	return &LockError{Path: path, Err: err}
}

func (e *LockError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("another provisioning run holds %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying error.
func (e *LockError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
