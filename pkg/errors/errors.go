package errors

import (
	"encoding/json"
	"fmt"
)

// ErrValidation is returned when request input is missing or malformed
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrSignature is returned when an OAuth callback HMAC does not match
type ErrSignature struct {
	Message string
}

func (e *ErrSignature) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "HMAC validation failed"
}

// ErrUpstream is returned when Freepik or Shopify fails or answers non-2xx.
// Body holds the raw upstream payload so it can be echoed to the caller.
type ErrUpstream struct {
	Service    string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ErrUpstream) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s API error: status %d, body: %s", e.Service, e.StatusCode, string(e.Body))
}

func (e *ErrUpstream) Unwrap() error {
	return e.Err
}

// Detail returns the upstream payload for a response body: decoded JSON when the
// payload is JSON, the raw text otherwise, or the transport error message.
func (e *ErrUpstream) Detail() interface{} {
	if len(e.Body) > 0 {
		if json.Valid(e.Body) {
			return json.RawMessage(e.Body)
		}
		return string(e.Body)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return nil
}
