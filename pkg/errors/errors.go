// Package errors provides the unified error type and factory functions for
// KeyIP-Continuity.  Every layer (domain, application, infrastructure,
// interfaces) uses AppError as the carrier for structured error information so
// that HTTP responses, CLI output and logs classify failures the same way.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout the service.
// It supports errors.Is / errors.As / errors.Unwrap across layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeDataSourceRateLimited, "USPTO throttled the search")
//	return errors.Wrap(err, errors.ErrCodeDataSourceParseError, "decode continuity response")
//	return errors.NotFound("application 16123456").WithDetail("registry=uspto")
type AppError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is the human-readable description returned to callers.
	Message string

	// Detail carries supplementary context such as identifiers or URLs.
	Detail string

	// Cause is the underlying error, if any.
	Cause error

	// Stack is the call stack captured at creation.  It is not part of Error().
	Stack string
}

// Error implements the error interface.
// Format: "[<code>] <message>: <detail>"
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status associated with the error code.
func (e *AppError) HTTPStatus() int {
	return HTTPStatusForCode(e.Code)
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with a format string.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.  A nil err yields
// nil.  When code is CodeUnknown and err already carries an AppError, the
// original code is kept.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

func isAnyCode(err error, codes ...ErrorCode) bool {
	for _, c := range codes {
		if IsCode(err, c) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err's chain carries one of the not-found codes.
func IsNotFound(err error) bool {
	return isAnyCode(err, CodeNotFound, ErrCodePatentNotFound, ErrCodePatentFamilyNotFound, ErrCodeProceedingNotFound)
}

// IsThrottled reports whether the upstream registry throttled the request.
func IsThrottled(err error) bool {
	return isAnyCode(err, ErrCodeDataSourceRateLimited, ErrCodeTooManyRequests)
}

// IsMalformed reports whether an upstream response could not be interpreted.
func IsMalformed(err error) bool {
	return isAnyCode(err, ErrCodeDataSourceParseError, ErrCodePatentParseFailed)
}

// IsUpstreamUnavailable reports whether the registry could not be reached or
// kept failing after retries.
func IsUpstreamUnavailable(err error) bool {
	return isAnyCode(err, ErrCodeDataSourceUnavailable, ErrCodeServiceUnavailable)
}

// IsTraversalDepthExceeded reports whether a family walk hit the depth guard.
func IsTraversalDepthExceeded(err error) bool {
	return IsCode(err, ErrCodeTraversalDepthExceeded)
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// If no *AppError is present, CodeUnknown is returned.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories
// ─────────────────────────────────────────────────────────────────────────────

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Stack: captureStack(1)}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message, Stack: captureStack(1)}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Stack: captureStack(1)}
}

// RateLimit constructs a CodeRateLimit AppError.
func RateLimit(message string) *AppError {
	return &AppError{Code: CodeRateLimit, Message: message, Stack: captureStack(1)}
}

// Throttled constructs an ErrCodeDataSourceRateLimited AppError.
func Throttled(message string) *AppError {
	return &AppError{Code: ErrCodeDataSourceRateLimited, Message: message, Stack: captureStack(1)}
}

// Malformed constructs an ErrCodeDataSourceParseError AppError.
func Malformed(message string) *AppError {
	return &AppError{Code: ErrCodeDataSourceParseError, Message: message, Stack: captureStack(1)}
}

// UpstreamUnavailable constructs an ErrCodeDataSourceUnavailable AppError.
func UpstreamUnavailable(message string) *AppError {
	return &AppError{Code: ErrCodeDataSourceUnavailable, Message: message, Stack: captureStack(1)}
}

// DepthExceeded constructs an ErrCodeTraversalDepthExceeded AppError.
func DepthExceeded(message string) *AppError {
	return &AppError{Code: ErrCodeTraversalDepthExceeded, Message: message, Stack: captureStack(1)}
}

//Personal.AI order the ending
