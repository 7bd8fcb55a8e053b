// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"code.hybscloud.com/kont"
)

// Coroutine is an immutable, typed chain of steps. A coroutine is built
// once with [First] and [Then] and may run any number of times, in any
// number of scopes, concurrently; per-run state lives in the
// [Continuation] created for each run.
type Coroutine[I, O any] struct {
	serial Serial
	name   string
	chain  Step
}

// First creates a coroutine from its first step.
func First[I, O any](step StepOf[I, O]) *Coroutine[I, O] {
	if step == nil {
		panic("coro: nil step")
	}
	return &Coroutine[I, O]{serial: nextSerial(), name: "Coroutine", chain: step}
}

// Then appends a step to a coroutine, returning a new coroutine; the
// original is unchanged. The step's input type must match the coroutine's
// output type, checked at compile time.
func Then[I, T, O any](co *Coroutine[I, T], step StepOf[T, O]) *Coroutine[I, O] {
	if step == nil {
		panic("coro: nil step")
	}
	return &Coroutine[I, O]{
		serial: nextSerial(),
		name:   co.name,
		chain:  chainOf(co.chain, step),
	}
}

// Named returns a copy of the coroutine with the given display name.
func (co *Coroutine[I, O]) Named(name string) *Coroutine[I, O] {
	t := *co
	t.name = name
	return &t
}

// Name returns the display name of the coroutine.
func (co *Coroutine[I, O]) Name() string {
	return co.name
}

// Serial returns the serial number assigned to this coroutine definition.
func (co *Coroutine[I, O]) Serial() Serial {
	return co.serial
}

// Terminate ends the given run of this coroutine early: the chain stops
// at the next step boundary and any pending suspension is cancelled.
func (co *Coroutine[I, O]) Terminate(c *Continuation) {
	c.Cancel()
}

// RunBlocking executes the whole chain on the calling goroutine and
// returns the result. Suspending steps degrade to backoff waits in this
// mode. The run is accounted in sc like an asynchronous one.
func (co *Coroutine[I, O]) RunBlocking(sc *Scope, in I) (O, error) {
	c := newContinuation(sc, co)
	sc.enter()
	out, err := co.chain.RunBlocking(c, in)
	var zero O
	if err != nil {
		c.Fail(err)
		_, e := c.result.TryGet()
		return zero, e
	}
	c.proceed(out, nil)
	o, ok := as[O](out)
	if !ok {
		return zero, NewError("coro: unexpected result type")
	}
	return o, nil
}

// RunAsync launches the chain on its own goroutine and returns the
// running continuation. The goroutine is released whenever the chain
// suspends; resumption continues on the resumer's goroutine. Obtain the
// result with [Await] or [Outcome], or synchronize on the whole scope
// with [Scope.Await].
func (co *Coroutine[I, O]) RunAsync(sc *Scope, in I) *Continuation {
	c := newContinuation(sc, co)
	sc.enter()
	go co.chain.RunAsync(Resolved[kont.Erased](in), nil, c)
	return c
}
