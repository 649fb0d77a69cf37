package services

import (
	"errors"
	"fmt"
)

// Custom errors

// ErrNoUserTurn is returned by clients whose API requires the conversation to
// end with a user message.
var ErrNoUserTurn = errors.New("conversation must end with a user message")

// ValidationError reports a malformed request shape, keyed by field path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

// InputError is a well-formed request whose content cannot be relayed.
type InputError struct {
	Code    string
	Message string
}

func (e *InputError) Error() string { return e.Message }

// UpstreamError wraps any failure of the model API call.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }
