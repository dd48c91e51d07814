package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind categorizes downstream failures so callers can decide between
// retrying, degrading and surfacing.
type ErrorKind string

const (
	// ErrorKindTransient covers network errors and 5xx responses; safe to
	// retry with backoff.
	ErrorKindTransient ErrorKind = "transient"

	// ErrorKindRateLimited is a 429 from the channel; retried like a
	// transient error but logged distinctly.
	ErrorKindRateLimited ErrorKind = "rate_limited"

	// ErrorKindInvalidRecipient means the channel permanently rejected the
	// destination address. Never retried.
	ErrorKindInvalidRecipient ErrorKind = "invalid_recipient"

	// ErrorKindPermanent is any other non-retryable rejection (malformed
	// request, auth failure).
	ErrorKindPermanent ErrorKind = "permanent"
)

// ChannelError is the canonical error returned by the outbound channel
// client and consumed by the message dispatcher's retry policy.
type ChannelError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
}

// Error implements the error interface.
func (e *ChannelError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewChannelError creates a channel error of the given kind.
func NewChannelError(kind ErrorKind, message string) *ChannelError {
	return &ChannelError{Kind: kind, Message: message}
}

// WithStatusCode attaches the HTTP status code observed from the channel.
func (e *ChannelError) WithStatusCode(code int) *ChannelError {
	e.StatusCode = code
	return e
}

// ErrRateLimited builds a rate-limited channel error.
func ErrRateLimited(message string) *ChannelError {
	return &ChannelError{Kind: ErrorKindRateLimited, Message: message, StatusCode: http.StatusTooManyRequests}
}

// ErrInvalidRecipient builds an invalid-recipient channel error.
func ErrInvalidRecipient(message string) *ChannelError {
	return &ChannelError{Kind: ErrorKindInvalidRecipient, Message: message, StatusCode: http.StatusBadRequest}
}

// IsRetryable reports whether err should be retried by the dispatcher.
// Unclassified errors (plain network failures) are treated as transient.
func IsRetryable(err error) bool {
	var chErr *ChannelError
	if errors.As(err, &chErr) {
		return chErr.Kind == ErrorKindTransient || chErr.Kind == ErrorKindRateLimited
	}
	return true
}

// ClassifyStatus maps a channel HTTP status code to an error kind.
func ClassifyStatus(code int) ErrorKind {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrorKindRateLimited
	case code >= 500:
		return ErrorKindTransient
	case code == http.StatusBadRequest, code == http.StatusNotFound:
		return ErrorKindInvalidRecipient
	default:
		return ErrorKindPermanent
	}
}
