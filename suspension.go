// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Suspension states. Claimed is a short transient state held by the party
// performing the resume; resume, fail, and cancel race through this one
// word, so a chain that failed can never be resumed afterwards.
const (
	suspPending uint32 = iota
	suspClaimed
	suspResumed
	suspFailed
	suspCanceled
)

// Suspension is a paused link of a chained execution: the suspended step,
// the remainder of the chain, and a one-shot resumption handle. While
// suspended the chain performs no further work and holds no goroutine;
// external code resumes it with a value, fails it, or cancels it.
//
// Affine semantics: a suspension may be consumed at most once. Resume
// panics on reuse; TryResume is the non-panicking variant.
type Suspension struct {
	step  Step
	next  Step
	c     *Continuation
	input kont.Erased
	state atomix.Uint32
}

// Step returns the step that created the suspension.
func (s *Suspension) Step() Step {
	return s.step
}

// Next returns the step awaiting the resume value, nil if the suspended
// step is terminal.
func (s *Suspension) Next() Step {
	return s.next
}

// Continuation returns the continuation of the suspended execution.
func (s *Suspension) Continuation() *Continuation {
	return s.c
}

// Input returns the pending input of the suspended step, nil if it has
// none.
func (s *Suspension) Input() kont.Erased {
	return s.input
}

// Resume continues the suspended chain with v on the calling goroutine:
// the next step receives exactly v. Panics if the suspension was already
// consumed.
func (s *Suspension) Resume(v kont.Erased) {
	if !s.TryResume(v) {
		panic("coro: suspension already consumed")
	}
}

// TryResume continues the suspended chain with v if the suspension is
// still pending. Reports false only once the suspension was consumed by
// a resume, failure, or cancellation; a transient claim held by a
// channel waker is waited out.
func (s *Suspension) TryResume(v kont.Erased) bool {
	var bo iox.Backoff
	for {
		switch s.state.Load() {
		case suspPending:
			if s.claim() {
				s.finish(v)
				return true
			}
		case suspClaimed:
			bo.Wait()
		default:
			return false
		}
	}
}

// Fail consumes the suspension and reports err on the suspended chain.
// Reports false if the suspension was already consumed.
func (s *Suspension) Fail(err error) bool {
	if !s.claim() {
		return false
	}
	s.state.Store(suspFailed)
	s.c.clearSuspension(s)
	s.c.Fail(err)
	return true
}

// Cancel consumes the suspension and settles the suspended chain with
// ErrCanceled, so no waiter is left pending. Reports false if the
// suspension was already consumed: a resume that won the race has
// delivered its value and the chain only stops at the following step
// boundary. Invoked by coroutine termination.
func (s *Suspension) Cancel() bool {
	var bo iox.Backoff
	for {
		switch s.state.Load() {
		case suspPending:
			if s.state.CompareAndSwap(suspPending, suspCanceled) {
				s.c.canceled.Store(1)
				s.c.clearSuspension(s)
				s.c.settleCancel()
				return true
			}
		case suspClaimed:
			// A resume is in flight; wait for it to land.
			bo.Wait()
		default:
			return false
		}
	}
}

// claim takes exclusive ownership of the pending suspension.
func (s *Suspension) claim() bool {
	return s.state.CompareAndSwap(suspPending, suspClaimed)
}

// release returns a claimed but unconsumed suspension to pending.
func (s *Suspension) release() {
	s.state.Store(suspPending)
}

// drop consumes a claimed suspension whose chain was terminated before the
// suspension could be taken by [Continuation.Cancel].
func (s *Suspension) drop() {
	s.state.Store(suspCanceled)
	s.c.clearSuspension(s)
	s.c.settleCancel()
}

// finish completes a claimed suspension: the remainder of the chain
// continues with v on the calling goroutine.
func (s *Suspension) finish(v kont.Erased) {
	s.state.Store(suspResumed)
	s.c.clearSuspension(s)
	s.c.proceed(v, s.next)
}

// poison marks the suspension failed without touching the chain outcome;
// the continuation has already detached it and settles the failure.
func (s *Suspension) poison() {
	s.state.CompareAndSwap(suspPending, suspFailed)
}
