// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"fmt"

	"code.hybscloud.com/kont"
)

// Code is the canonical shape of a function step: the step input and the
// continuation of the execution in, the output or a failure out. The
// simplified constructors below adapt narrower shapes to this one at
// construction time, not at call time.
type Code[I, O any] func(c *Continuation, in I) (O, error)

// FuncStep adapts an arbitrary function to the [Step] contract, so simple
// executions don't require a new step type. The wrapped function is
// immutable after construction.
type FuncStep[I, O any] struct {
	IO[I, O]
	name string
	code Code[I, O]
}

// NewFuncStep creates a function step from the canonical two-argument
// shape. Panics if code is nil; a missing function is a construction
// error, never deferred to execution time.
func NewFuncStep[I, O any](code Code[I, O]) *FuncStep[I, O] {
	if code == nil {
		panic("coro: nil code")
	}
	return &FuncStep[I, O]{name: "FuncStep", code: code}
}

// Named returns a copy of the step with the given display name.
func (s *FuncStep[I, O]) Named(name string) *FuncStep[I, O] {
	t := *s
	t.name = name
	return &t
}

// Name returns the display name of the step.
func (s *FuncStep[I, O]) Name() string {
	return s.name
}

// Execute is the extension point: it invokes the wrapped function with
// the input value and the continuation.
func (s *FuncStep[I, O]) Execute(c *Continuation, in I) (O, error) {
	return s.code(c, in)
}

// RunBlocking implements [Step] by calling the extension point directly.
func (s *FuncStep[I, O]) RunBlocking(c *Continuation, in kont.Erased) (kont.Erased, error) {
	i, ok := as[I](in)
	if !ok {
		var want I
		return nil, NewError(fmt.Sprintf("coro: step %s: input is %T, want %T", s.name, in, want))
	}
	out, err := s.Execute(c, i)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RunAsync implements [Step] with the default chaining behavior: no
// suspension, the chain advances as soon as prev resolves.
func (s *FuncStep[I, O]) RunAsync(prev *Promise[kont.Erased], next Step, c *Continuation) {
	c.ContinueApply(prev, func(in kont.Erased) (kont.Erased, error) {
		return s.RunBlocking(c, in)
	}, next)
}

// Apply creates a step that transforms the input into the output with a
// pure function.
func Apply[I, O any](f func(I) O) *FuncStep[I, O] {
	if f == nil {
		panic("coro: nil code")
	}
	return &FuncStep[I, O]{name: "Apply", code: func(_ *Continuation, in I) (O, error) {
		return f(in), nil
	}}
}

// ApplyCtx creates a transforming step whose function also receives the
// continuation of the execution.
func ApplyCtx[I, O any](f func(c *Continuation, in I) O) *FuncStep[I, O] {
	if f == nil {
		panic("coro: nil code")
	}
	return &FuncStep[I, O]{name: "Apply", code: func(c *Continuation, in I) (O, error) {
		return f(c, in), nil
	}}
}

// Map is a semantic alternative for [Apply].
func Map[I, O any](mapper func(I) O) *FuncStep[I, O] {
	return Apply(mapper).Named("Map")
}

// Consume creates a step that executes a side effect on the input and
// returns the input unchanged.
func Consume[T any](f func(T)) *FuncStep[T, T] {
	if f == nil {
		panic("coro: nil code")
	}
	return &FuncStep[T, T]{name: "Consume", code: func(_ *Continuation, in T) (T, error) {
		f(in)
		return in, nil
	}}
}

// ConsumeCtx creates a consuming step whose function also receives the
// continuation of the execution.
func ConsumeCtx[T any](f func(c *Continuation, in T)) *FuncStep[T, T] {
	if f == nil {
		panic("coro: nil code")
	}
	return &FuncStep[T, T]{name: "Consume", code: func(c *Continuation, in T) (T, error) {
		f(c, in)
		return in, nil
	}}
}

// Supply creates a step that ignores its input and produces a fresh value
// on each call.
func Supply[I, O any](f func() O) *FuncStep[I, O] {
	if f == nil {
		panic("coro: nil code")
	}
	return &FuncStep[I, O]{name: "Supply", code: func(_ *Continuation, _ I) (O, error) {
		return f(), nil
	}}
}

// SupplyCtx creates a producing step whose function receives the
// continuation of the execution instead of the input.
func SupplyCtx[I, O any](f func(c *Continuation) O) *FuncStep[I, O] {
	if f == nil {
		panic("coro: nil code")
	}
	return &FuncStep[I, O]{name: "Supply", code: func(c *Continuation, _ I) (O, error) {
		return f(c), nil
	}}
}

// Run creates a step that executes a side effect, ignoring the input and
// producing no output.
func Run[I any](f func()) *FuncStep[I, struct{}] {
	if f == nil {
		panic("coro: nil code")
	}
	return &FuncStep[I, struct{}]{name: "Run", code: func(_ *Continuation, _ I) (struct{}, error) {
		f()
		return struct{}{}, nil
	}}
}

// RunCtx creates a step that executes a side effect on the continuation
// and returns the input unchanged.
func RunCtx[T any](f func(c *Continuation)) *FuncStep[T, T] {
	if f == nil {
		panic("coro: nil code")
	}
	return &FuncStep[T, T]{name: "Run", code: func(c *Continuation, in T) (T, error) {
		f(c)
		return in, nil
	}}
}

// GetParameter creates a step that ignores its input and returns the value
// stored under p in the continuation, or the zero value if unset.
func GetParameter[I, O any](p Param[O]) *FuncStep[I, O] {
	return SupplyCtx[I](func(c *Continuation) O {
		v, _ := GetParam(c, p)
		return v
	}).Named("GetParameter")
}

// GetScopeParameter creates a step that ignores its input and returns the
// value stored under p in the enclosing scope, or the zero value if unset.
func GetScopeParameter[I, O any](p Param[O]) *FuncStep[I, O] {
	return SupplyCtx[I](func(c *Continuation) O {
		v, _ := GetScopeParam(c.Scope(), p)
		return v
	}).Named("GetScopeParameter")
}

// SetParameter creates a step that stores the input value under p in the
// continuation and returns the input unchanged.
func SetParameter[T any](p Param[T]) *FuncStep[T, T] {
	return ApplyCtx(func(c *Continuation, in T) T {
		SetParam(c, p, in)
		return in
	}).Named("SetParameter")
}

// SetScopeParameter creates a step that stores the input value under p in
// the enclosing scope and returns the input unchanged.
func SetScopeParameter[T any](p Param[T]) *FuncStep[T, T] {
	return ApplyCtx(func(c *Continuation, in T) T {
		SetScopeParam(c.Scope(), p, in)
		return in
	}).Named("SetScopeParameter")
}
