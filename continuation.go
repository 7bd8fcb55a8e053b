// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
)

// Continuation is the execution context threaded through every step call
// of one coroutine run: named parameters, the enclosing scope, the owning
// coroutine, and the suspend/fail bookkeeping of the chain.
//
// A continuation belongs to exactly one chain. Steps of that chain never
// run concurrently with each other, but parameters and cancellation may be
// touched from resumer goroutines, so the mutable collaborator state is
// guarded by a mutex; the chain outcome itself is a lock-free [Promise].
type Continuation struct {
	serial Serial
	scope  *Scope
	coro   CoroutineRef
	result *Promise[kont.Erased]

	canceled atomix.Uint32

	mu     sync.Mutex
	params map[string]kont.Erased
	susp   *Suspension
}

// CoroutineRef is the identity of the coroutine owning a continuation,
// exposing the terminate operation steps may delegate to.
type CoroutineRef interface {
	Name() string
	Serial() Serial
	Terminate(c *Continuation)
}

func newContinuation(sc *Scope, co CoroutineRef) *Continuation {
	return &Continuation{
		serial: nextSerial(),
		scope:  sc,
		coro:   co,
		result: NewPromise[kont.Erased](),
	}
}

// Serial returns the serial number assigned to this execution.
func (c *Continuation) Serial() Serial {
	return c.serial
}

// Scope returns the enclosing run-wide scope.
func (c *Continuation) Scope() *Scope {
	return c.scope
}

// Coroutine returns the coroutine currently running in this continuation.
func (c *Continuation) Coroutine() CoroutineRef {
	return c.coro
}

// Value returns the parameter stored under name, and whether it was set.
func (c *Continuation) Value(name string) (kont.Erased, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.params[name]
	return v, ok
}

// SetValue stores a parameter under name.
func (c *Continuation) SetValue(name string, v kont.Erased) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.params == nil {
		c.params = make(map[string]kont.Erased)
	}
	c.params[name] = v
}

// ContinueApply registers a continuation on the pending input prev: once
// prev resolves, code runs with the resolved value and the output is
// handed to next (or settles the chain if next is nil). Failures of the
// resolution or of code are forwarded to [Continuation.Fail]; a panic in
// code is recovered and reported as a step failure.
func (c *Continuation) ContinueApply(prev *Promise[kont.Erased], code func(kont.Erased) (kont.Erased, error), next Step) {
	prev.WhenDone(func(in kont.Erased, err error) {
		if err != nil {
			c.Fail(err)
			return
		}
		if c.Canceled() {
			c.settleCancel()
			return
		}
		out, err := apply(code, in)
		if err != nil {
			c.Fail(err)
			return
		}
		c.proceed(out, next)
	})
}

// apply invokes code, converting a panic into a step failure.
func apply(code func(kont.Erased) (kont.Erased, error), in kont.Erased) (out kont.Erased, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, WithCause("coro: step panicked", recovered(p))
		}
	}()
	return code(in)
}

// proceed advances the chain with a resolved value: hands it to next, or
// settles the chain outcome if next is nil.
func (c *Continuation) proceed(v kont.Erased, next Step) {
	if c.Canceled() {
		c.settleCancel()
		return
	}
	if next == nil {
		if c.result.Complete(v) {
			c.scope.finished(nil)
		}
		return
	}
	next.RunAsync(Resolved(v), nil, c)
}

// Suspend creates and registers a suspension of step, to be resumed later
// by external code; next receives the resume value. in is the pending
// input of the suspended step, nil if it has none. The chain performs no
// further work until the suspension is resumed, failed, or cancelled.
func (c *Continuation) Suspend(step, next Step, in kont.Erased) *Suspension {
	s := &Suspension{step: step, next: next, c: c, input: in}
	c.mu.Lock()
	c.susp = s
	c.mu.Unlock()
	return s
}

// Fail reports an asynchronous failure, terminating the remainder of the
// chain. The error is wrapped into *Error unless already one; a pending
// suspension is poisoned so it can never resume afterwards.
func (c *Continuation) Fail(err error) {
	e := err
	if _, ok := err.(*Error); !ok && err != ErrCanceled {
		e = FromCause(err)
	}
	if s := c.takeSuspension(); s != nil {
		s.poison()
	}
	if c.result.Fail(e) {
		c.scope.finished(e)
	}
}

// Cancel terminates this execution: the chain stops at the next step
// boundary and a pending suspension is cancelled, unblocking any waiter
// with ErrCanceled. The cancellation flag is raised only once the
// suspension race is resolved: a resume already in flight wins and its
// value reaches the next step, the chain stopping at the boundary after
// it, so a value taken from a transport is never discarded unseen.
func (c *Continuation) Cancel() {
	if s := c.takeSuspension(); s != nil {
		s.Cancel()
		c.canceled.Store(1)
		return
	}
	c.canceled.Store(1)
	c.settleCancel()
}

// Canceled reports whether termination of this execution was requested.
func (c *Continuation) Canceled() bool {
	return c.canceled.Load() != 0
}

// settleCancel settles the chain outcome with ErrCanceled. Cancellation
// is not counted as a scope failure.
func (c *Continuation) settleCancel() {
	if c.result.Fail(ErrCanceled) {
		c.scope.finished(ErrCanceled)
	}
}

// Done reports whether the chain has settled.
func (c *Continuation) Done() bool {
	return c.result.Done()
}

// Wait blocks until the chain settles and returns the erased outcome.
func (c *Continuation) Wait() (kont.Erased, error) {
	return c.result.Await()
}

// TryWait returns the erased outcome, or iox.ErrWouldBlock while the
// chain is still running or suspended.
func (c *Continuation) TryWait() (kont.Erased, error) {
	return c.result.TryGet()
}

// takeSuspension detaches and returns the pending suspension, if any.
func (c *Continuation) takeSuspension() *Suspension {
	c.mu.Lock()
	s := c.susp
	c.susp = nil
	c.mu.Unlock()
	return s
}

// clearSuspension detaches s if it is still the pending suspension.
func (c *Continuation) clearSuspension(s *Suspension) {
	c.mu.Lock()
	if c.susp == s {
		c.susp = nil
	}
	c.mu.Unlock()
}

// Await blocks until the chain of c settles and returns its typed result.
func Await[O any](c *Continuation) (O, error) {
	v, err := c.Wait()
	if err != nil {
		var zero O
		return zero, err
	}
	o, ok := as[O](v)
	if !ok {
		var zero O
		return zero, NewError("coro: unexpected result type")
	}
	return o, nil
}

// Outcome blocks until the chain of c settles and returns the result as
// an Either: Right on success, Left on failure or cancellation.
func Outcome[O any](c *Continuation) kont.Either[error, O] {
	o, err := Await[O](c)
	if err != nil {
		return kont.Left[error, O](err)
	}
	return kont.Right[error](o)
}
