package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call.
type Kind int

// Failure kinds, in the order a call can hit them.
const (
	KindNone Kind = iota
	KindEncoding
	KindNetwork
	KindDecoding
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEncoding:
		return "encoding"
	case KindNetwork:
		return "network"
	case KindDecoding:
		return "decoding"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// EncodingError means the request body could not be serialized.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid request body: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// NetworkError means the transport failed: DNS, refused connection or timeout.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodingError means the response body was not valid JSON.
type DecodingError struct {
	Path string
	Body string
	Err  error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("invalid JSON response from %s: %v", e.Path, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// ApplicationError is a well-formed response with success set to false.
type ApplicationError struct {
	Path    string
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return "request failed: " + e.Path
	}
	return e.Message
}

// KindOf reports which failure kind err carries, or KindNone.
func KindOf(err error) Kind {
	var (
		encErr *EncodingError
		netErr *NetworkError
		decErr *DecodingError
		appErr *ApplicationError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &appErr):
		return KindApplication
	case errors.As(err, &decErr):
		return KindDecoding
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &encErr):
		return KindEncoding
	default:
		return KindNone
	}
}

// ServerMessage returns the server-provided message of an ApplicationError.
func ServerMessage(err error) (string, bool) {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
