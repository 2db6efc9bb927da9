// Package network provides the keyed abort registry and the retrying HTTP client used for all API communication.
package network

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed request for retry and reporting decisions.
type ErrorKind int

const (
	// KindCancel marks a request aborted through its cancellation token. Never retried, never surfaced as a toast.
	KindCancel ErrorKind = iota + 1
	// KindConnection marks a transport-level failure (no response received). Retried per policy.
	KindConnection
	// KindUnknown marks every other failure, including non-2xx responses. Never retried.
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindCancel:
		return "cancel"
	case KindConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// RequestError carries the classification of a failed request alongside its cause.
type RequestError struct {
	Kind   ErrorKind
	URL    string
	Status int
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request %s: %s (status %d)", e.URL, e.Kind, e.Status)
	}
	return fmt.Sprintf("request %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// classify maps a transport error or response status onto a RequestError.
func classify(url string, err error, status int) *RequestError {
	switch {
	case err != nil && errors.Is(err, context.Canceled):
		return &RequestError{Kind: KindCancel, URL: url, Err: err}
	case err != nil:
		// No response made it back: treat as a connectivity failure.
		return &RequestError{Kind: KindConnection, URL: url, Err: err}
	default:
		return &RequestError{Kind: KindUnknown, URL: url, Status: status}
	}
}

// kindOf extracts the classification from an error chain, defaulting to KindUnknown.
func kindOf(err error) ErrorKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancel
	}
	return KindUnknown
}

// IsCancel reports whether the error chain represents an aborted request.
func IsCancel(err error) bool {
	return err != nil && kindOf(err) == KindCancel
}

// IsConnection reports whether the error chain represents a transport failure.
func IsConnection(err error) bool {
	return err != nil && kindOf(err) == KindConnection
}
