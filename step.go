// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"code.hybscloud.com/kont"
)

// Step is the contract every unit of work in a coroutine satisfies. Values
// cross step boundaries type-erased as kont.Erased; typed constructors
// recover concrete types at the boundary.
//
// Implementations must be immutable after construction and hold no per-run
// state: the same Step instance may be reused across many concurrent
// chains. Per-run state lives in the Continuation.
//
// The default async behavior of a step is a single call to
// [Continuation.ContinueApply] with its extension point; only steps that
// must wait for an external event implement RunAsync differently, by
// parking a [Suspension] obtained from [Continuation.Suspend]. A step that
// implements its own RunAsync must not resume a suspension after a failure
// has been reported: it forwards errors to [Continuation.Fail] instead.
type Step interface {
	// Name returns the display name of the step.
	Name() string

	// RunBlocking executes the step directly, blocking the calling
	// goroutine until the execution finishes. No suspension is possible
	// in this mode; suspending steps degrade to a backoff wait.
	RunBlocking(c *Continuation, in kont.Erased) (kont.Erased, error)

	// RunAsync continues a chain from the pending input prev. Once prev
	// resolves, the step executes and hands its output to next; a nil
	// next marks this step as terminal, its output settling the chain.
	RunAsync(prev *Promise[kont.Erased], next Step, c *Continuation)
}

// StepOf is a Step with phantom input/output typing, the currency of
// [First] and [Then]. Implementations embed [IO].
type StepOf[I, O any] interface {
	Step
	StepInput() I
	StepResult() O
}

// IO declares the typed boundary of a step implementation. Embed
// IO[I, O] in a Step to satisfy [StepOf]; the marker methods are
// phantom and never called.
type IO[I, O any] struct{}

// StepInput is a phantom marker carrying the input type.
func (IO[I, O]) StepInput() I { panic("coro: phantom") }

// StepResult is a phantom marker carrying the output type.
func (IO[I, O]) StepResult() O { panic("coro: phantom") }

// TerminateCoroutine ends the coroutine the continuation runs in. The
// chain stops at the next step boundary; a pending suspension is
// cancelled. Other chains are unaffected.
func TerminateCoroutine(c *Continuation) {
	c.Coroutine().Terminate(c)
}

// seq links a step to the remainder of its chain. It is itself a Step, so
// chains nest without special cases; tail may be nil for a terminal node.
type seq struct {
	step Step
	tail Step
}

// chainOf concatenates two chain fragments, either of which may be nil.
func chainOf(a, b Step) Step {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &seq{step: a, tail: b}
}

func (s *seq) Name() string {
	return s.step.Name()
}

// RunBlocking executes the chain sequentially on the calling goroutine,
// stopping at the first failure or termination request.
func (s *seq) RunBlocking(c *Continuation, in kont.Erased) (kont.Erased, error) {
	if c.Canceled() {
		return nil, ErrCanceled
	}
	out, err := s.step.RunBlocking(c, in)
	if err != nil || s.tail == nil {
		return out, err
	}
	if c.Canceled() {
		return nil, ErrCanceled
	}
	return s.tail.RunBlocking(c, out)
}

// RunAsync runs the head step with the remainder of this chain (plus any
// outer continuation) as its next step.
func (s *seq) RunAsync(prev *Promise[kont.Erased], next Step, c *Continuation) {
	s.step.RunAsync(prev, chainOf(s.tail, next), c)
}

// as recovers a concrete type at the erasure boundary. A nil erased value
// maps to the zero value, so ignored inputs flow through untyped.
func as[T any](v kont.Erased) (T, bool) {
	if v == nil {
		var zero T
		return zero, true
	}
	t, ok := v.(T)
	return t, ok
}
