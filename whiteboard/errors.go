package whiteboard

import (
	"errors"
	"fmt"
)

// ErrorCode classifies an *Error. Codes up to ErrorInternalServer mirror
// the codes a board server sends in error envelopes; the rest are raised
// by the client itself.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota
	ErrorUnsupportedVersion
	ErrorUnauthorized
	ErrorInvalidMessage
	ErrorBadRequest
	ErrorBoardNotFound
	ErrorAlreadyJoined
	ErrorNotJoined
	ErrorAccessDenied
	ErrorRateLimited
	ErrorInternalServer

	ErrorConnection
	ErrorDisconnected
	ErrorTimeout
	ErrorInvalidConfig
	ErrorNotConnected
	ErrorSerialization
	ErrorInvalidRecord
	ErrorQueueFull
)

var codeNames = [...]string{
	ErrorUnknown:            "unknown",
	ErrorUnsupportedVersion: "unsupported_version",
	ErrorUnauthorized:       "unauthorized",
	ErrorInvalidMessage:     "invalid_message",
	ErrorBadRequest:         "bad_request",
	ErrorBoardNotFound:      "board_not_found",
	ErrorAlreadyJoined:      "already_joined",
	ErrorNotJoined:          "not_joined",
	ErrorAccessDenied:       "access_denied",
	ErrorRateLimited:        "rate_limited",
	ErrorInternalServer:     "internal_error",
	ErrorConnection:         "connection_error",
	ErrorDisconnected:       "disconnected",
	ErrorTimeout:            "timeout",
	ErrorInvalidConfig:      "invalid_config",
	ErrorNotConnected:       "not_connected",
	ErrorSerialization:      "serialization_error",
	ErrorInvalidRecord:      "invalid_record",
	ErrorQueueFull:          "queue_full",
}

// String returns the wire name of the code.
func (e ErrorCode) String() string {
	if e >= 0 && int(e) < len(codeNames) {
		return codeNames[e]
	}
	return fmt.Sprintf("unknown_code_%d", int(e))
}

func (e ErrorCode) protocol() bool {
	return e >= ErrorUnsupportedVersion && e <= ErrorInternalServer
}

// ParseErrorCode maps a server error code to an ErrorCode. Client-side
// names are not accepted from the wire.
func ParseErrorCode(code string) ErrorCode {
	for c := ErrorUnsupportedVersion; c.protocol(); c++ {
		if codeNames[c] == code {
			return c
		}
	}
	return ErrorUnknown
}

// Error is returned by Client operations and passed to OnError.
type Error struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause, if any.
func (e *Error) Unwrap() error { return e.Wrapped }

// Is matches any *Error with the same code, so NewError(code, "") can be
// used as a target with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// NewError returns an Error without a cause.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError returns an Error caused by err.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Wrapped: err}
}

// FromProtocolError converts a server error payload to an Error.
func FromProtocolError(e *ProtocolError) *Error {
	if e == nil {
		return nil
	}
	return NewError(ParseErrorCode(e.Code), e.Msg)
}

// IsProtocolError reports whether err carries a code sent by the server.
func IsProtocolError(err error) bool {
	var we *Error
	return errors.As(err, &we) && we.Code.protocol()
}

// IsConnectionError reports whether err comes from the link to the server
// rather than from a request.
func IsConnectionError(err error) bool {
	var we *Error
	if !errors.As(err, &we) {
		return false
	}
	switch we.Code {
	case ErrorConnection, ErrorDisconnected, ErrorTimeout:
		return true
	}
	return false
}
