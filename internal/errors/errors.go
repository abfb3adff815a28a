package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeUpstream   ErrorType = "upstream"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// NewMissingInputError reports a required caller field that is absent or empty
func NewMissingInputError(message string) *AppError {
	return newAppError(ErrorTypeValidation, ErrCodeMissingInput, message, nil)
}

// NewUpstreamError reports a failed call to a text-generation provider
func NewUpstreamError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUpstream, ErrCodeUpstreamFailed, message, cause)
}

// NewParseError reports provider output that held no usable structured data
func NewParseError(message string, cause error) *AppError {
	return newAppError(ErrorTypeParse, ErrCodeParseFailed, message, cause)
}

// AsAppError unwraps err to the first AppError in its chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func hasType(err error, typ ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == typ
}

// IsMissingInput reports whether err is a caller-contract violation
func IsMissingInput(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == ErrCodeMissingInput
}

// IsConfigurationError reports whether the service itself is unusable as configured
func IsConfigurationError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

func IsUpstreamError(err error) bool {
	return hasType(err, ErrorTypeUpstream)
}

func IsParseFailure(err error) bool {
	return hasType(err, ErrorTypeParse)
}

// Common error codes
const (
	ErrCodeFileNotFound        = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable     = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat       = "INVALID_FORMAT"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeMissingInput        = "MISSING_INPUT"
	ErrCodeMissingAPIKey       = "MISSING_API_KEY"
	ErrCodeUnsupportedProvider = "UNSUPPORTED_PROVIDER"
	ErrCodeInvalidConfig       = "INVALID_CONFIG"
	ErrCodeUpstreamFailed      = "UPSTREAM_FAILED"
	ErrCodeParseFailed         = "PARSE_FAILED"
	ErrCodeUnsupportedFile     = "UNSUPPORTED_FILE_TYPE"
	ErrCodeAIServiceFailed     = "AI_SERVICE_FAILED"
	ErrCodeFileTooLarge        = "FILE_TOO_LARGE"
)
