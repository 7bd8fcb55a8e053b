// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/coro"
	"code.hybscloud.com/iox"
)

func TestPromiseTryGetPending(t *testing.T) {
	p := coro.NewPromise[int]()
	if p.Done() {
		t.Fatal("fresh promise reports done")
	}
	if _, err := p.TryGet(); !iox.IsWouldBlock(err) {
		t.Fatalf("TryGet got %v, want would-block", err)
	}
}

func TestPromiseComplete(t *testing.T) {
	p := coro.NewPromise[int]()
	if !p.Complete(42) {
		t.Fatal("first Complete reported false")
	}
	if p.Complete(43) {
		t.Fatal("second Complete reported true")
	}
	if p.Fail(errors.New("late")) {
		t.Fatal("Fail after Complete reported true")
	}
	got, err := p.TryGet()
	if err != nil {
		t.Fatalf("TryGet error: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want first settled value 42", got)
	}
}

func TestPromiseFail(t *testing.T) {
	boom := errors.New("boom")
	p := coro.NewPromise[int]()
	if !p.Fail(boom) {
		t.Fatal("Fail reported false")
	}
	if _, err := p.Await(); err != boom {
		t.Fatalf("Await error %v, want %v", err, boom)
	}
}

func TestResolvedRejected(t *testing.T) {
	if v, err := coro.Resolved(7).TryGet(); err != nil || v != 7 {
		t.Fatalf("Resolved got (%d, %v)", v, err)
	}
	boom := errors.New("boom")
	if _, err := coro.Rejected[int](boom).TryGet(); err != boom {
		t.Fatalf("Rejected got %v, want %v", err, boom)
	}
}

func TestPromiseWhenDoneAfterSettle(t *testing.T) {
	p := coro.Resolved("hello")
	ran := false
	p.WhenDone(func(v string, err error) {
		ran = true
		if v != "hello" || err != nil {
			t.Fatalf("callback got (%q, %v)", v, err)
		}
	})
	if !ran {
		t.Fatal("continuation on settled promise did not run inline")
	}
}

func TestPromiseWhenDoneBeforeSettle(t *testing.T) {
	p := coro.NewPromise[int]()
	got := make(chan int, 1)
	p.WhenDone(func(v int, err error) {
		if err != nil {
			t.Errorf("callback error: %v", err)
		}
		got <- v
	})
	p.Complete(5)
	if v := <-got; v != 5 {
		t.Fatalf("callback got %d, want 5", v)
	}
}

func TestPromiseWhenDoneSingleRegistration(t *testing.T) {
	p := coro.NewPromise[int]()
	p.WhenDone(func(int, error) {})
	defer func() {
		if recover() == nil {
			t.Fatal("second WhenDone did not panic")
		}
	}()
	p.WhenDone(func(int, error) {})
}

func TestPromiseConcurrentAwait(t *testing.T) {
	p := coro.NewPromise[uint64]()
	const waiters = 8
	var wg sync.WaitGroup
	wg.Add(waiters)
	for range waiters {
		go func() {
			defer wg.Done()
			v, err := p.Await()
			if err != nil || v != 123 {
				t.Errorf("Await got (%d, %v)", v, err)
			}
		}()
	}
	p.Complete(123)
	wg.Wait()
}

func TestPromiseConcurrentSettle(t *testing.T) {
	p := coro.NewPromise[int]()
	const settlers = 8
	wins := make(chan int, settlers)
	var wg sync.WaitGroup
	wg.Add(settlers)
	for i := range settlers {
		go func() {
			defer wg.Done()
			if p.Complete(i) {
				wins <- i
			}
		}()
	}
	wg.Wait()
	close(wins)
	var winners []int
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("%d settlers won, want exactly 1", len(winners))
	}
	got, err := p.TryGet()
	if err != nil {
		t.Fatalf("TryGet error: %v", err)
	}
	if got != winners[0] {
		t.Fatalf("settled value %d, want winner %d", got, winners[0])
	}
}
