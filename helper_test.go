// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro_test

import (
	"code.hybscloud.com/coro"
	"code.hybscloud.com/kont"
)

// gate is a suspending step used to exercise the suspension hook: instead
// of chaining, it parks a suspension and hands it to the test through a
// channel. The test resumes, fails, or cancels it explicitly.
type gate struct {
	coro.IO[int, int]
	parked chan *coro.Suspension
}

func newGate() *gate {
	return &gate{parked: make(chan *coro.Suspension, 1)}
}

func (g *gate) Name() string {
	return "Gate"
}

// RunBlocking degrades to immediate pass-through; suspension is only
// meaningful in chained mode.
func (g *gate) RunBlocking(c *coro.Continuation, in kont.Erased) (kont.Erased, error) {
	return in, nil
}

func (g *gate) RunAsync(prev *coro.Promise[kont.Erased], next coro.Step, c *coro.Continuation) {
	prev.WhenDone(func(in kont.Erased, err error) {
		if err != nil {
			c.Fail(err)
			return
		}
		g.parked <- c.Suspend(g, next, in)
	})
}
