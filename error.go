// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"errors"
	"fmt"
)

// ErrCanceled is the outcome of a chain whose coroutine was terminated
// before the chain could finish.
var ErrCanceled = errors.New("coro: coroutine canceled")

// Error is the uniform failure signal of coroutine executions. It carries
// an optional message and an optional causing error; at least one is
// present, enforced by the constructors. Causes form a finite chain
// traversable with errors.Unwrap.
type Error struct {
	msg   string
	cause error
}

// NewError creates a message-only failure signal.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// FromCause creates a cause-only failure signal.
func FromCause(cause error) *Error {
	return &Error{cause: cause}
}

// WithCause creates a failure signal from a message and a causing error.
func WithCause(msg string, cause error) *Error {
	return &Error{msg: msg, cause: cause}
}

// AsError recognizes an already-compatible failure: a *Error passes
// through unwrapped, anything else is wrapped as a cause.
func AsError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return FromCause(err)
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.cause != nil:
		return e.msg + ": " + e.cause.Error()
	case e.msg != "":
		return e.msg
	default:
		return e.cause.Error()
	}
}

// Message returns the message of this failure, empty for cause-only signals.
func (e *Error) Message() string {
	return e.msg
}

// Cause returns the causing error, nil for message-only signals.
func (e *Error) Cause() error {
	return e.cause
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// recovered converts a recovered panic value into a failure cause.
func recovered(p any) error {
	if err, ok := p.(error); ok {
		return err
	}
	return fmt.Errorf("%v", p)
}
