package model

import "errors"

// ErrorKind classifies pipeline failures.
type ErrorKind string

const (
	KindFetchUnavailable       ErrorKind = "fetch_unavailable"
	KindContextNotFound        ErrorKind = "context_not_found"
	KindGenerationUnavailable  ErrorKind = "generation_unavailable"
	KindGenerationMalformed    ErrorKind = "generation_malformed"
	KindPersistenceUnavailable ErrorKind = "persistence_unavailable"
	KindValidation             ErrorKind = "validation_error"
)

// Error carries an ErrorKind and a message that is safe to show callers.
// The wrapped Err holds the diagnostic cause and is only logged.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error of the given kind.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the ErrorKind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// PublicMessage returns the user-safe message for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
