package api

import (
	"fmt"
)

// APIError represents a non-2xx response from Binance.
type APIError struct {
	StatusCode int
	Code       int // Binance error code, 0 when the body carried none
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("binance api error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("binance api error %d: %s", e.StatusCode, e.Message)
}

// TransportError reports a failed request: network failure, cancelled
// context, or a non-2xx status (wrapping an *APIError).
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that is not valid JSON for the
// expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SchemaError reports well-formed JSON that lacks an expected field, holds
// an empty array where a record was expected, or carries a malformed number.
type SchemaError struct {
	Op     string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: missing field %q", e.Op, e.Field)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Op, e.Field, e.Reason)
}
