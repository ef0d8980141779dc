package chatgpt

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode classifies every failure this package can report.
type ErrorCode int

const (
	CodeOK ErrorCode = iota
	// CodeOutOfMemory is kept for wire/state parity with other bindings of
	// this library; Go code normally never produces it.
	CodeOutOfMemory
	CodeInvalidArgument
	CodeHTTP
	CodeJSONParse
	CodeAPI
	CodeStream
	CodeState
)

func (c ErrorCode) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeOutOfMemory:
		return "out_of_memory"
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeHTTP:
		return "http_error"
	case CodeJSONParse:
		return "json_parse_error"
	case CodeAPI:
		return "api_error"
	case CodeStream:
		return "stream_error"
	case CodeState:
		return "state_error"
	default:
		return fmt.Sprintf("error_code(%d)", int(c))
	}
}

// Error is the single error container used throughout the package.
//
// HTTPStatus is set only when a remote exchange reached the point of
// receiving a status line; it stays 0 for local and connect-level failures.
type Error struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int

	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	var b strings.Builder
	b.WriteString("chatgpt: ")
	b.WriteString(e.Code.String())

	msg := strings.TrimSpace(e.Message)
	if msg == "" && e.HTTPStatus != 0 {
		msg = http.StatusText(e.HTTPStatus)
	}
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if e.HTTPStatus != 0 {
		fmt.Fprintf(&b, " (http %d)", e.HTTPStatus)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError unwraps err into a *Error when possible.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsRateLimit reports whether err is a 429 from the remote service.
func IsRateLimit(err error) bool {
	ce, ok := AsError(err)
	return ok && ce.HTTPStatus == http.StatusTooManyRequests
}

// IsRetryable reports whether the transport would have considered err worth
// repeating: network failures, 5xx responses, and rate limits.
func IsRetryable(err error) bool {
	ce, ok := AsError(err)
	if !ok {
		return false
	}
	switch ce.Code {
	case CodeHTTP, CodeStream:
	default:
		return false
	}
	if ce.HTTPStatus == 0 || ce.HTTPStatus == http.StatusTooManyRequests {
		return true
	}
	return ce.HTTPStatus >= 500
}

func invalidArgument(msg string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

func stateError(msg string) *Error {
	return &Error{Code: CodeState, Message: msg}
}
