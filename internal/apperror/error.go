package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Code string

const (
	CodeValidation Code = "validation"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeInternal   Code = "internal"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// FieldError describes why a single document path failed casting or validation.
type FieldError struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ValidationError collects field errors for one document, keyed by path.
type ValidationError struct {
	Model  string
	Errors map[string]*FieldError
}

func NewValidationError(model string) *ValidationError {
	return &ValidationError{
		Model:  model,
		Errors: map[string]*FieldError{},
	}
}

// Add records a failure for path. The first failure recorded for a path wins.
func (e *ValidationError) Add(path, kind, message string) {
	if _, exists := e.Errors[path]; exists {
		return
	}
	e.Errors[path] = &FieldError{
		Path:    path,
		Kind:    kind,
		Message: message,
	}
}

func (e *ValidationError) Has(path string) bool {
	_, ok := e.Errors[path]
	return ok
}

// ErrorOrNil returns nil when no field errors were recorded.
func (e *ValidationError) ErrorOrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	paths := make([]string, 0, len(e.Errors))
	for path := range e.Errors {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, path := range paths {
		parts = append(parts, fmt.Sprintf("%s: %s", path, e.Errors[path].Message))
	}
	return fmt.Sprintf("%s validation failed: %s", e.Model, strings.Join(parts, ", "))
}

func GetCode(err error) Code {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return CodeValidation
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return CodeInternal
}
