package model

import "fmt"

// ParseError represents parsing errors with layout context
type ParseError struct {
	Layout  Layout
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Layout, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Layout, e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(layout Layout, field, message string, cause error) *ParseError {
	return &ParseError{
		Layout:  layout,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// ExtractionError represents extraction failures at a collaborator boundary
// (PDF text extraction, LLM fallback). The pattern engine itself degrades to
// empty values instead of erroring.
type ExtractionError struct {
	Method  string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed [%s]: %s (%v)", e.Method, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed [%s]: %s", e.Method, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates a new extraction error
func NewExtractionError(method, message string, cause error) *ExtractionError {
	return &ExtractionError{
		Method:  method,
		Message: message,
		Cause:   cause,
	}
}
