package session

import (
	"errors"

	"github.com/clinicgate/clinicgate/internal/client"
)

// Fallback messages used when the server gives none
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
	MsgLogoutFailed       = "Logout failed"
)

// ErrorKind classifies why a remote call failed
type ErrorKind uint8

const (
	// ErrorKindTransport: the request never produced an HTTP response
	ErrorKindTransport ErrorKind = iota + 1
	// ErrorKindRejected: the server answered with a non-2xx status
	ErrorKindRejected
	// ErrorKindMalformed: a 2xx answer we could not use
	ErrorKindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindTransport:
		return "transport"
	case ErrorKindRejected:
		return "rejected"
	case ErrorKindMalformed:
		return "malformed"
	default:
		return "none"
	}
}

// Failure describes a failed store operation
type Failure struct {
	Kind ErrorKind
	// Status is the HTTP status for ErrorKindRejected, zero otherwise
	Status  int
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is what Login, Register and Logout return. Exactly one of the
// success or failure variants is set: Success with optional Data, or
// Failure.
type Result struct {
	Success bool
	Data    map[string]any
	Failure *Failure
}

// Error returns the failure message, or "" for a successful result
func (r Result) Error() string {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Message
}

func succeeded(data map[string]any) Result {
	return Result{Success: true, Data: data}
}

func failed(f *Failure) Result {
	return Result{Failure: f}
}

// classify turns a client error into a Failure. The server's message wins
// over fallback; Logout always uses its fixed message.
func classify(err error, fallback string, useServerMessage bool) *Failure {
	f := &Failure{
		Kind:    ErrorKindTransport,
		Message: fallback,
		Err:     err,
	}

	var apiErr *client.APIError
	var decodeErr *client.DecodeError
	switch {
	case errors.As(err, &apiErr):
		f.Kind = ErrorKindRejected
		f.Status = apiErr.StatusCode
		if useServerMessage && apiErr.Message != "" {
			f.Message = apiErr.Message
		}
	case errors.As(err, &decodeErr):
		f.Kind = ErrorKindMalformed
	}

	return f
}
