package media

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	CodeInvalidType  = "INVALID_FILE_TYPE"
	CodeTooLarge     = "FILE_TOO_LARGE"
	CodeMissingField = "MISSING_FIELD"
	CodeTypeMismatch = "TYPE_MISMATCH"
	CodeTooLong      = "VALIDATION_ERROR"
)

// maxTextLen matches the width of the name, path and alt columns.
const maxTextLen = 255

var (
	ErrNotFound     = errors.New("media not found")
	ErrForbidden    = errors.New("only the uploader or an admin may change this file")
	ErrPickerClosed = errors.New("picker is closed")
)

// ValidationError rejects a request before any store is touched.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Invalid(code, message string) error {
	return &ValidationError{Code: code, Message: message}
}

func checkLen(field, value string) error {
	if utf8.RuneCountInString(value) > maxTextLen {
		return Invalid(CodeTooLong, fmt.Sprintf("%s must be at most %d characters", field, maxTextLen))
	}
	return nil
}

// StoreError wraps a blob or record backend failure on the primary path.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }
