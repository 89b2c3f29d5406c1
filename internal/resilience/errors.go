// Package resilience classifies outbound call failures so callers can degrade
// instead of fail. Nothing here retries.
package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// StatusError wraps a non-2xx HTTP response from an upstream provider.
type StatusError struct {
	Err        error
	StatusCode int
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// NewStatusError wraps an error with the HTTP status code that caused it.
func NewStatusError(err error, statusCode int) *StatusError {
	return &StatusError{Err: err, StatusCode: statusCode}
}

// StatusCode returns the HTTP status carried by the first StatusError in the
// chain, or 0 if there is none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// String-based heuristics for errors that lose their type through wrapping.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"context deadline exceeded",
		"client.timeout exceeded",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsNetwork reports whether err is a connection-level failure (refused,
// reset, DNS) rather than an application response.
func IsNetwork(err error) bool {
	if err == nil {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"connection refused",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
