// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro_test

import (
	"errors"
	"strconv"
	"testing"

	"code.hybscloud.com/coro"
)

func TestApplyEquivalence(t *testing.T) {
	double := func(n int) int { return n * 2 }
	step := coro.Apply(double)

	got, err := coro.First[int, int](step).RunBlocking(coro.NewScope(), 21)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if want := double(21); got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestNewFuncStepCanonicalShape(t *testing.T) {
	step := coro.NewFuncStep(func(c *coro.Continuation, in int) (string, error) {
		if c == nil {
			t.Fatal("nil continuation passed to code")
		}
		return strconv.Itoa(in), nil
	})

	got, err := coro.First[int, string](step).RunBlocking(coro.NewScope(), 7)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if got != "7" {
		t.Fatalf("got %q, want %q", got, "7")
	}
}

func TestNewFuncStepError(t *testing.T) {
	boom := errors.New("boom")
	step := coro.NewFuncStep(func(_ *coro.Continuation, _ int) (int, error) {
		return 0, boom
	})

	_, err := coro.First[int, int](step).RunBlocking(coro.NewScope(), 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("error %v does not wrap cause %v", err, boom)
	}
}

func TestNilCodePanics(t *testing.T) {
	ctors := map[string]func(){
		"NewFuncStep": func() { coro.NewFuncStep[int, int](nil) },
		"Apply":       func() { coro.Apply[int, int](nil) },
		"ApplyCtx":    func() { coro.ApplyCtx[int, int](nil) },
		"Map":         func() { coro.Map[int, int](nil) },
		"Consume":     func() { coro.Consume[int](nil) },
		"ConsumeCtx":  func() { coro.ConsumeCtx[int](nil) },
		"Supply":      func() { coro.Supply[int, int](nil) },
		"SupplyCtx":   func() { coro.SupplyCtx[int, int](nil) },
		"Run":         func() { coro.Run[int](nil) },
		"RunCtx":      func() { coro.RunCtx[int](nil) },
	}
	for name, ctor := range ctors {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("%s(nil) did not panic", name)
				}
			}()
			ctor()
		}()
	}
}

func TestConsumePassThrough(t *testing.T) {
	calls := 0
	var seen int
	step := coro.Consume(func(n int) {
		calls++
		seen = n
	})

	got, err := coro.First[int, int](step).RunBlocking(coro.NewScope(), 99)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if got != 99 {
		t.Fatalf("got %d, want input 99 unchanged", got)
	}
	if calls != 1 {
		t.Fatalf("side effect ran %d times, want 1", calls)
	}
	if seen != 99 {
		t.Fatalf("side effect saw %d, want 99", seen)
	}
}

func TestSupplyIgnoresInput(t *testing.T) {
	n := 0
	step := coro.Supply[int, int](func() int {
		n++
		return n
	})
	co := coro.First[int, int](step)
	sc := coro.NewScope()

	first, err := co.RunBlocking(sc, 1000)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	second, err := co.RunBlocking(sc, -1000)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("got %d, %d; want supplier-determined 1, 2", first, second)
	}
}

func TestRunDiscardsInput(t *testing.T) {
	ran := false
	step := coro.Run[string](func() { ran = true })

	_, err := coro.First[string, struct{}](step).RunBlocking(coro.NewScope(), "ignored")
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if !ran {
		t.Fatal("side effect did not run")
	}
}

func TestRunCtxReturnsInput(t *testing.T) {
	var serial coro.Serial
	step := coro.RunCtx[int](func(c *coro.Continuation) {
		serial = c.Serial()
	})

	got, err := coro.First[int, int](step).RunBlocking(coro.NewScope(), 5)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if got != 5 {
		t.Fatalf("got %d, want input 5 unchanged", got)
	}
	if serial == 0 {
		t.Fatal("continuation serial not observed")
	}
}

func TestParameterReadAfterWrite(t *testing.T) {
	p := coro.NewParam[int]("n")
	co := coro.Then(
		coro.First[int, int](coro.SetParameter(p)),
		coro.GetParameter[int, int](p),
	)

	got, err := co.RunBlocking(coro.NewScope(), 7)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %d, want last written value 7", got)
	}
}

func TestGetParameterUnsetIsZero(t *testing.T) {
	p := coro.NewParam[string]("missing")
	co := coro.First[int, string](coro.GetParameter[int, string](p))

	got, err := co.RunBlocking(coro.NewScope(), 1)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if got != "" {
		t.Fatalf("got %q, want zero value for unset parameter", got)
	}
}

func TestScopeParameterSteps(t *testing.T) {
	p := coro.NewParam[int]("shared")
	sc := coro.NewScope()

	_, err := coro.First[int, int](coro.SetScopeParameter(p)).RunBlocking(sc, 11)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if v, ok := coro.GetScopeParam(sc, p); !ok || v != 11 {
		t.Fatalf("scope param got (%d, %v), want (11, true)", v, ok)
	}

	got, err := coro.First[int, int](coro.GetScopeParameter[int, int](p)).RunBlocking(sc, 0)
	if err != nil {
		t.Fatalf("RunBlocking error: %v", err)
	}
	if got != 11 {
		t.Fatalf("got %d, want scope value 11", got)
	}
}

func TestStepNames(t *testing.T) {
	if got := coro.Apply(func(n int) int { return n }).Name(); got != "Apply" {
		t.Fatalf("Apply name got %q", got)
	}
	if got := coro.Map(func(n int) int { return n }).Name(); got != "Map" {
		t.Fatalf("Map name got %q", got)
	}
	named := coro.Consume(func(int) {}).Named("Audit")
	if got := named.Name(); got != "Audit" {
		t.Fatalf("Named step name got %q", got)
	}
}
