package stream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{URL: "https://api.test.local/items", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q, want it to mention the cause", err.Error())
	}
	if !strings.Contains(err.Error(), "https://api.test.local/items") {
		t.Errorf("Error() = %q, want it to mention the URL", err.Error())
	}
}

func TestBackoffExhaustedError_Message(t *testing.T) {
	err := &BackoffExhaustedError{
		Attempts: 4,
		Response: &Response{StatusCode: http.StatusTooManyRequests},
	}

	msg := err.Error()
	if !strings.Contains(msg, "4 attempts") {
		t.Errorf("Error() = %q, want attempt count", msg)
	}
	if !strings.Contains(msg, "429") {
		t.Errorf("Error() = %q, want last status code", msg)
	}
}

func TestDecodeError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := &DecodeError{Source: "orders", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "orders") {
		t.Errorf("Error() = %q, want source name", err.Error())
	}
}

func TestAsDecodeError(t *testing.T) {
	// A plain error gets wrapped.
	wrapped := asDecodeError("orders", errors.New("boom"))
	var decodeErr *DecodeError
	if !errors.As(wrapped, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %T", wrapped)
	}

	// An existing DecodeError is passed through unchanged.
	again := asDecodeError("orders", wrapped)
	if again != wrapped {
		t.Error("Expected existing DecodeError to pass through unwrapped")
	}
}

func TestConflictingBodyError_Message(t *testing.T) {
	err := &ConflictingBodyError{Source: "orders"}
	if !strings.Contains(err.Error(), "orders") {
		t.Errorf("Error() = %q, want source name", err.Error())
	}
}
