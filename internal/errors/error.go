package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryUsage    Category = "usage"
	CategorySetup    Category = "setup"
	CategoryContext  Category = "context"
	CategoryInternal Category = "internal"
	CategoryConfig   Category = "config"
)

// HookError is a structured error with an operation name, suggestion and
// an optional wrapped sentinel.
type HookError struct {
	// Code is a unique error identifier (e.g., "H001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Op names the hook or operation that failed (e.g., "UseState").
	Op string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	msg := e.Message
	if e.Category == CategorySetup && e.Suggestion != "" {
		// Setup errors usually surface as unrecovered panics; carry the fix.
		msg += ". " + e.Suggestion
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *HookError) Unwrap() error {
	return e.Wrapped
}

// WithOp records the failing operation.
func (e *HookError) WithOp(op string) *HookError {
	e.Op = op
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *HookError) WithSuggestion(s string) *HookError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *HookError) WithDetail(d string) *HookError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *HookError) Wrap(err error) *HookError {
	e.Wrapped = err
	return e
}

// New creates a HookError from a registered error code.
func New(code string) *HookError {
	template, ok := registry[code]
	if !ok {
		return &HookError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &HookError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new HookError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *HookError {
	return &HookError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a HookError.
func FromError(err error, code string) *HookError {
	if err == nil {
		return nil
	}
	var he *HookError
	if stderrors.As(err, &he) {
		return he
	}
	return New(code).Wrap(err)
}
