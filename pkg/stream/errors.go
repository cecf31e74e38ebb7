package stream

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the reader.
var (
	// ErrContextCancelled is returned when the context is cancelled while
	// waiting out a backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// ConflictingBodyError indicates that both RequestBodyJSON and
// RequestBodyData returned a non-empty value for the same request. This is
// a configuration defect in the source; it surfaces before any request is
// sent.
type ConflictingBodyError struct {
	Source string
}

// Error implements the error interface.
func (e *ConflictingBodyError) Error() string {
	return fmt.Sprintf("source %s: at most one of request body json and request body data may be set", e.Source)
}

// TransportError wraps a network-level failure (unreachable host, malformed
// target, socket timeout). Transport errors are never retried.
type TransportError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// BackoffExhaustedError is returned when the retry budget is spent on a
// retryable status. It carries the last response for diagnostics.
type BackoffExhaustedError struct {
	// Attempts is the total number of requests sent for the failing step.
	Attempts int

	// Response is the last retryable response received.
	Response *Response
}

// Error implements the error interface.
func (e *BackoffExhaustedError) Error() string {
	return fmt.Sprintf("retry attempts exhausted after %d attempts (last status %d)",
		e.Attempts, e.Response.StatusCode)
}

// DecodeError indicates a response body could not be turned into records or
// a next-page token. Decoding failures are fatal for the run and never
// retried.
type DecodeError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("source %s: decode response: %v", e.Source, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// asDecodeError wraps err as a DecodeError unless it already is one.
func asDecodeError(source string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Source: source, Err: err}
}
