// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package coro provides the step abstraction of a coroutine execution model:
// units of work that run either by direct blocking invocation or as links in
// an asynchronous, continuation-chained pipeline.
//
// Values cross step boundaries type-erased as [code.hybscloud.com/kont.Erased];
// the typed constructors recover concrete types at the boundary.
//
// # Architecture
//
//   - Steps: [Step] is the erased runtime contract; [StepOf] adds phantom
//     input/output typing via [IO]. Both execution modes funnel through a
//     single extension point.
//   - Chaining: [First] and [Then] compose typed steps into an immutable
//     [Coroutine]. Async chains advance through [Promise] cells; no step
//     holds per-run state.
//   - Suspension: a step whose work depends on an external event parks a
//     [Suspension] via [Continuation.Suspend]. While suspended the chain
//     occupies no goroutine; resumption is an explicit external call.
//   - Non-blocking: channel operations return [code.hybscloud.com/iox.ErrWouldBlock]
//     on backpressure. Blocking entry points wait with adaptive backoff.
//   - Failures: every execution or resolution error is wrapped into [Error]
//     (or passed through if already one) and settles the chain outcome.
//
// # API Topologies
//
//   - Function steps: [NewFuncStep], [Apply], [Map], [Consume], [Supply],
//     [Run] and their continuation-aware Ctx variants; [GetParameter],
//     [SetParameter], [GetScopeParameter], [SetScopeParameter].
//   - Channel steps: [ChannelSend], [ChannelReceive] over a bounded SPSC
//     [Channel] backed by [code.hybscloud.com/lfq].
//   - Running: [Coroutine.RunBlocking] executes on the calling goroutine;
//     [Coroutine.RunAsync] launches into a [Scope] and returns the
//     [Continuation]. Await results with [Await] or as
//     [code.hybscloud.com/kont.Either] via [Outcome].
//
// # Example
//
//	double := coro.Apply(func(n int) int { return n * 2 })
//	report := coro.Consume(func(n int) { fmt.Println(n) })
//	co := coro.Then(coro.First[int, int](double), report)
//
//	scope := coro.NewScope()
//	c := co.RunAsync(scope, 21)
//	n, err := coro.Await[int](c)
package coro
