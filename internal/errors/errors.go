package errors

import (
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeLogging ErrorType = "logging"
)

// Stable error codes. Every one of them is fatal at startup.
const (
	CodeConfigDirNotFound = "CONFIG_DIR_NOT_FOUND"
	CodeConfigRead        = "CONFIG_READ_FAILED"
	CodeConfigParse       = "CONFIG_PARSE_FAILED"
	CodeLogDirNotFound    = "LOG_DIR_NOT_FOUND"
	CodeLogFileIO         = "LOG_FILE_IO"
)

// Sentinels for errors.Is. Matching is done on Code only.
var (
	ErrConfigDirNotFound = &AppError{Type: ErrorTypeConfig, Code: CodeConfigDirNotFound}
	ErrConfigRead        = &AppError{Type: ErrorTypeConfig, Code: CodeConfigRead}
	ErrConfigParse       = &AppError{Type: ErrorTypeConfig, Code: CodeConfigParse}
	ErrLogDirNotFound    = &AppError{Type: ErrorTypeLogging, Code: CodeLogDirNotFound}
	ErrLogFileIO         = &AppError{Type: ErrorTypeLogging, Code: CodeLogFileIO}
)

// AppError represents a structured startup error
type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Details string
	// Field is the offending configuration key, when known.
	Field string
	Path  string
	Cause error
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %q)", msg, e.Field)
	}
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, msg, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, msg)
}

// Unwrap implements the Unwrap interface for error wrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError
func New(errorType ErrorType, code string, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errorType ErrorType, code string, message string) *AppError {
	appErr := New(errorType, code, message)
	appErr.Cause = err
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// WithDetails adds additional details to an error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithField records the configuration key the error is about
func (e *AppError) WithField(field string) *AppError {
	e.Field = field
	return e
}

// WithPath records the file the error is about
func (e *AppError) WithPath(path string) *AppError {
	e.Path = path
	return e
}

// Code returns the code of the first AppError in err's chain, or "".
func Code(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Fields returns zap fields describing err for a fatal startup diagnostic.
func Fields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return fields
	}
	fields = append(fields,
		zap.String("error_type", string(appErr.Type)),
		zap.String("error_code", appErr.Code),
	)
	if appErr.Field != "" {
		fields = append(fields, zap.String("field", appErr.Field))
	}
	if appErr.Path != "" {
		fields = append(fields, zap.String("path", appErr.Path))
	}
	return fields
}
