package client

import (
	"encoding/json"
	"fmt"
)

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	// Message is the server's "error" field, empty when the body had none
	Message string
	Body    []byte
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       body,
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error
	}

	return apiErr
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed (status %d): %s", e.StatusCode, string(e.Body))
}

// DecodeError is returned when a 2xx body is not the JSON we expect
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
