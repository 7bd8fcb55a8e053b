// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Promise states. A promise settles exactly once; arming and settling are
// short transient states guarding the callback and value fields.
const (
	promisePending uint32 = iota
	promiseArming
	promiseArmed
	promiseSettling
	promiseDone
)

// Promise is a single-assignment asynchronous cell: the pending result of
// a step execution. At most one continuation may be registered; it runs on
// the settling goroutine, or inline when the promise is already settled.
//
// Settlement and registration are lock-free: a single state word ordered
// by CAS transitions guards the value, error, and callback fields.
type Promise[T any] struct {
	state atomix.Uint32
	value T
	err   error
	cb    func(T, error)
}

// NewPromise creates an unsettled promise.
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{}
}

// Resolved creates a promise already settled with v.
func Resolved[T any](v T) *Promise[T] {
	p := &Promise[T]{value: v}
	p.state.Store(promiseDone)
	return p
}

// Rejected creates a promise already settled with err.
func Rejected[T any](err error) *Promise[T] {
	p := &Promise[T]{err: err}
	p.state.Store(promiseDone)
	return p
}

// Complete settles the promise with v and runs the registered continuation,
// if any. Reports false if the promise was already settled.
func (p *Promise[T]) Complete(v T) bool {
	return p.settle(v, nil)
}

// Fail settles the promise with err and runs the registered continuation,
// if any. Reports false if the promise was already settled.
func (p *Promise[T]) Fail(err error) bool {
	var zero T
	return p.settle(zero, err)
}

// Done reports whether the promise has settled.
func (p *Promise[T]) Done() bool {
	return p.state.Load() == promiseDone
}

// TryGet returns the settled value or error, or iox.ErrWouldBlock while
// the promise is still pending.
func (p *Promise[T]) TryGet() (T, error) {
	if p.state.Load() != promiseDone {
		var zero T
		return zero, iox.ErrWouldBlock
	}
	return p.value, p.err
}

// Await blocks the calling goroutine with adaptive backoff until the
// promise settles, then returns its value or error.
func (p *Promise[T]) Await() (T, error) {
	var bo iox.Backoff
	for p.state.Load() != promiseDone {
		bo.Wait()
	}
	return p.value, p.err
}

// WhenDone registers the single continuation of this promise: it runs
// with the outcome on the settling goroutine, or inline if the promise
// has already settled. Panics if a continuation is already registered: a
// promise links exactly one step to the next.
func (p *Promise[T]) WhenDone(f func(T, error)) {
	var bo iox.Backoff
	for {
		switch s := p.state.Load(); s {
		case promisePending:
			if p.state.CompareAndSwap(promisePending, promiseArming) {
				p.cb = f
				p.state.Store(promiseArmed)
				return
			}
		case promiseSettling:
			bo.Wait()
		case promiseDone:
			f(p.value, p.err)
			return
		default: // promiseArming, promiseArmed
			panic("coro: promise continuation already registered")
		}
	}
}

// settle writes the outcome and transitions to done, invoking the
// registered continuation if one was armed.
func (p *Promise[T]) settle(v T, err error) bool {
	var bo iox.Backoff
	for {
		switch s := p.state.Load(); s {
		case promisePending:
			if p.state.CompareAndSwap(promisePending, promiseSettling) {
				p.value, p.err = v, err
				p.state.Store(promiseDone)
				return true
			}
		case promiseArmed:
			if p.state.CompareAndSwap(promiseArmed, promiseSettling) {
				p.value, p.err = v, err
				cb := p.cb
				p.state.Store(promiseDone)
				cb(v, err)
				return true
			}
		case promiseArming:
			bo.Wait()
		default: // promiseSettling, promiseDone
			return false
		}
	}
}
