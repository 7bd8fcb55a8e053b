// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"fmt"
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/lfq"
)

// Channel is a bounded in-process pipe connecting a sending chain to a
// receiving chain, backed by a lock-free SPSC queue. One chain (or
// external producer) sends, one chain (or external consumer) receives.
//
// Operations are non-blocking and return iox.ErrWouldBlock on
// backpressure; Send and Receive wait past the boundary with adaptive
// backoff. The suspending steps [ChannelSend] and [ChannelReceive] park
// instead of waiting: every successful operation on the peer side resumes
// a parked suspension.
type Channel[T any] struct {
	data lfq.SPSC[T]

	// At most one suspension is parked per direction. The slots are
	// taken with Swap and reinstated with Store; a waker entering from
	// either side sees the whole slot or nothing, never a torn queue.
	sendW atomic.Pointer[Suspension]
	recvW atomic.Pointer[Suspension]

	// Wake epochs, bumped on every waker entry. A waker that reinstates
	// a suspension re-checks the epoch it read before the failed
	// transport operation; a bump in between means a peer operation
	// landed while the slot was held, so the waker retries instead of
	// stranding the value.
	sendEpoch atomix.Uint32
	recvEpoch atomix.Uint32
}

// NewChannel creates a channel with the given bounded capacity.
func NewChannel[T any](capacity int) *Channel[T] {
	ch := &Channel[T]{}
	ch.data.Init(capacity)
	return ch
}

// TrySend enqueues v, resuming a parked receiver if one is waiting.
// Non-blocking: returns iox.ErrWouldBlock if the channel is full.
func (ch *Channel[T]) TrySend(v T) error {
	if err := ch.data.Enqueue(&v); err != nil {
		return err
	}
	ch.wakeReceiver()
	return nil
}

// TryReceive dequeues a value, resuming a parked sender if one is
// waiting. Non-blocking: returns iox.ErrWouldBlock if the channel is
// empty.
func (ch *Channel[T]) TryReceive() (T, error) {
	v, err := ch.data.Dequeue()
	if err != nil {
		var zero T
		return zero, err
	}
	ch.wakeSender()
	return v, nil
}

// Send blocks with adaptive backoff until v is enqueued.
func (ch *Channel[T]) Send(v T) {
	var bo iox.Backoff
	for ch.TrySend(v) != nil {
		bo.Wait()
	}
}

// Receive blocks with adaptive backoff until a value is dequeued.
func (ch *Channel[T]) Receive() T {
	var bo iox.Backoff
	for {
		v, err := ch.TryReceive()
		if err == nil {
			return v
		}
		bo.Wait()
	}
}

// wakeReceiver resumes the parked receiver with a dequeued value. A
// consumed or cancelled suspension is discarded and the value stays in
// the transport; if the data slot was drained before the claim, the
// receiver is reinstated in its parked slot.
func (ch *Channel[T]) wakeReceiver() {
	ch.recvEpoch.Add(1)
	for {
		susp := ch.recvW.Swap(nil)
		if susp == nil {
			return
		}
		if !susp.claim() {
			continue
		}
		if susp.c.Canceled() {
			susp.drop()
			continue
		}
		e := ch.recvEpoch.Load()
		v, err := ch.data.Dequeue()
		if err != nil {
			susp.release()
			ch.recvW.Store(susp)
			if ch.recvEpoch.Load() != e {
				continue
			}
			return
		}
		ch.wakeSender()
		susp.finish(v)
		return
	}
}

// wakeSender resumes the parked sender: its pending value is enqueued
// into the freed slot and its chain continues with the value passed
// through. A consumed or cancelled suspension is discarded; if the slot
// was filled before the claim, the sender is reinstated in its parked
// slot.
func (ch *Channel[T]) wakeSender() {
	ch.sendEpoch.Add(1)
	for {
		susp := ch.sendW.Swap(nil)
		if susp == nil {
			return
		}
		if !susp.claim() {
			continue
		}
		if susp.c.Canceled() {
			susp.drop()
			continue
		}
		e := ch.sendEpoch.Load()
		v, _ := as[T](susp.Input())
		if err := ch.data.Enqueue(&v); err != nil {
			susp.release()
			ch.sendW.Store(susp)
			if ch.sendEpoch.Load() != e {
				continue
			}
			return
		}
		ch.wakeReceiver()
		susp.finish(susp.Input())
		return
	}
}

// channelSend is the suspending step sending the input value into a
// channel and passing it through.
type channelSend[T any] struct {
	IO[T, T]
	ch *Channel[T]
}

// ChannelSend creates a step that sends the input value into ch and
// returns it unchanged. In async mode the step suspends while ch is full;
// the receiving side resumes it. Blocking mode degrades to a backoff
// wait.
func ChannelSend[T any](ch *Channel[T]) StepOf[T, T] {
	if ch == nil {
		panic("coro: nil channel")
	}
	return &channelSend[T]{ch: ch}
}

func (s *channelSend[T]) Name() string {
	return "ChannelSend"
}

func (s *channelSend[T]) RunBlocking(c *Continuation, in kont.Erased) (kont.Erased, error) {
	v, ok := as[T](in)
	if !ok {
		var want T
		return nil, NewError(fmt.Sprintf("coro: ChannelSend: input is %T, want %T", in, want))
	}
	s.ch.Send(v)
	return in, nil
}

// RunAsync sends without blocking, or parks a suspension for the
// receiving side to resume once it frees capacity.
func (s *channelSend[T]) RunAsync(prev *Promise[kont.Erased], next Step, c *Continuation) {
	prev.WhenDone(func(in kont.Erased, err error) {
		if err != nil {
			c.Fail(err)
			return
		}
		if c.Canceled() {
			c.settleCancel()
			return
		}
		v, ok := as[T](in)
		if !ok {
			var want T
			c.Fail(NewError(fmt.Sprintf("coro: ChannelSend: input is %T, want %T", in, want)))
			return
		}
		if err := s.ch.TrySend(v); err == nil {
			c.proceed(in, next)
			return
		}
		susp := c.Suspend(s, next, in)
		if !s.ch.sendW.CompareAndSwap(nil, susp) {
			c.Fail(NewError("coro: a sender is already parked on the channel"))
			return
		}
		// Capacity may have been freed between the failed TrySend and
		// the park; the claim protocol makes the self-wake safe.
		s.ch.wakeSender()
	})
}

// channelReceive is the suspending step receiving a value from a channel,
// ignoring its input.
type channelReceive[I, T any] struct {
	IO[I, T]
	ch *Channel[T]
}

// ChannelReceive creates a step that ignores its input and returns the
// next value received from ch. In async mode the step suspends while ch
// is empty; the sending side (or any external TrySend) resumes it with
// exactly the received value. Blocking mode degrades to a backoff wait.
func ChannelReceive[I, T any](ch *Channel[T]) StepOf[I, T] {
	if ch == nil {
		panic("coro: nil channel")
	}
	return &channelReceive[I, T]{ch: ch}
}

func (s *channelReceive[I, T]) Name() string {
	return "ChannelReceive"
}

func (s *channelReceive[I, T]) RunBlocking(c *Continuation, in kont.Erased) (kont.Erased, error) {
	return s.ch.Receive(), nil
}

// RunAsync receives without blocking, or parks a suspension for the
// sending side to resume with the next value.
func (s *channelReceive[I, T]) RunAsync(prev *Promise[kont.Erased], next Step, c *Continuation) {
	prev.WhenDone(func(_ kont.Erased, err error) {
		if err != nil {
			c.Fail(err)
			return
		}
		if c.Canceled() {
			c.settleCancel()
			return
		}
		if v, err := s.ch.TryReceive(); err == nil {
			c.proceed(v, next)
			return
		}
		susp := c.Suspend(s, next, nil)
		if !s.ch.recvW.CompareAndSwap(nil, susp) {
			c.Fail(NewError("coro: a receiver is already parked on the channel"))
			return
		}
		// A value may have arrived between the failed TryReceive and
		// the park; the claim protocol makes the self-wake safe.
		s.ch.wakeReceiver()
	})
}
