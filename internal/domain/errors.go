package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedQuery signals that LLM output could not be reduced to a
	// structured query carrying the required fields.
	ErrMalformedQuery = errors.New("malformed query")
	// ErrUnsupportedMethod signals a query method outside the supported set.
	ErrUnsupportedMethod = errors.New("unsupported method")
	// ErrNoJSONFound signals an LLM response with no parseable JSON object.
	ErrNoJSONFound = errors.New("no JSON found in LLM response")
	// ErrLLMRequest signals an upstream model provider or transport failure.
	ErrLLMRequest = errors.New("llm request failed")
	// ErrConfigNotFound signals a caller with no stored configuration.
	// User-correctable, not a system fault.
	ErrConfigNotFound = errors.New("configuration not found")
	// ErrDataStore signals a failure executing against the document store.
	ErrDataStore = errors.New("data store error")
	// ErrSchemaNotFound signals a missing schema cache entry for the caller.
	ErrSchemaNotFound = errors.New("schema not found")
)

// UnsupportedMethodError wraps ErrUnsupportedMethod with the offending value.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnsupportedMethod.Error(), e.Method)
}

func (e *UnsupportedMethodError) Unwrap() error { return ErrUnsupportedMethod }

// NewUnsupportedMethod creates an unsupported method error naming the value.
func NewUnsupportedMethod(method string) error {
	return &UnsupportedMethodError{Method: method}
}

// LLMRequestError wraps ErrLLMRequest with upstream status and body for diagnostics.
type LLMRequestError struct {
	StatusCode int
	Body       string
}

func (e *LLMRequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", ErrLLMRequest.Error(), e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: status %d", ErrLLMRequest.Error(), e.StatusCode)
}

func (e *LLMRequestError) Unwrap() error { return ErrLLMRequest }

// NewLLMRequestError creates an LLM request error preserving the upstream response.
func NewLLMRequestError(status int, body string) error {
	return &LLMRequestError{StatusCode: status, Body: body}
}
