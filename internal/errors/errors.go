// Package errors provides shared error types for the Currents news client.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError indicates the process cannot serve any tool because
// required configuration is missing or invalid.
type ConfigurationError struct {
	Key     string // configuration key, e.g. CURRENTS_API_KEY
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// NewConfigurationError creates a ConfigurationError.
func NewConfigurationError(key, message string) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: message}
}

// AuthenticationError indicates the provider rejected the API key (HTTP 401).
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string {
	return "authentication error: invalid or expired API key"
}

// RateLimitError indicates the provider throttled the request (HTTP 429).
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "rate limit error: request limit reached"
}

// UpstreamError covers every other unsuccessful provider response,
// including a 200 whose body is not valid JSON.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error // parse error, if any
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(e.Body)
	if e.Err != nil {
		return fmt.Sprintf("upstream error: %d - invalid JSON response: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream error: %d - %s", e.StatusCode, body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates an UpstreamError for a non-success status.
func NewUpstreamError(statusCode int, body string) *UpstreamError {
	return &UpstreamError{StatusCode: statusCode, Body: body}
}

// UnsupportedMethodError is a programming error: only GET reaches the provider.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported HTTP method: %s", e.Method)
}

// ValidationError indicates invalid input parameters or a response that
// does not match its declared schema.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsConfiguration returns true if err is or wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsAuthentication returns true if err is or wraps an AuthenticationError.
func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsRateLimit returns true if err is or wraps a RateLimitError.
func IsRateLimit(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}

// IsUpstream returns true if err is or wraps an UpstreamError.
func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

// IsUnsupportedMethod returns true if err is or wraps an UnsupportedMethodError.
func IsUnsupportedMethod(err error) bool {
	var target *UnsupportedMethodError
	return errors.As(err, &target)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// Code returns a short label for err, used as a metrics label.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case IsAuthentication(err):
		return "unauthorized"
	case IsRateLimit(err):
		return "rate_limited"
	case IsUpstream(err):
		var up *UpstreamError
		errors.As(err, &up)
		return fmt.Sprintf("http_%d", up.StatusCode)
	case IsUnsupportedMethod(err):
		return "unsupported_method"
	case IsValidation(err):
		return "validation"
	case IsConfiguration(err):
		return "configuration"
	default:
		return "transport"
	}
}
