// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Scope is the run-wide context coroutines launch in. It tracks every
// launched run until it finishes and carries parameter storage shared
// across all coroutines of the run, potentially across goroutines.
type Scope struct {
	serial  Serial
	running atomix.Uint32

	mu       sync.Mutex
	params   map[string]kont.Erased
	firstErr error
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{serial: nextSerial()}
}

// Serial returns the serial number assigned to this scope.
func (sc *Scope) Serial() Serial {
	return sc.serial
}

// Value returns the scope parameter stored under name, and whether it was
// set.
func (sc *Scope) Value(name string) (kont.Erased, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	v, ok := sc.params[name]
	return v, ok
}

// SetValue stores a scope parameter under name.
func (sc *Scope) SetValue(name string, v kont.Erased) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.params == nil {
		sc.params = make(map[string]kont.Erased)
	}
	sc.params[name] = v
}

// Active returns the number of launched runs that have not finished.
func (sc *Scope) Active() uint32 {
	return sc.running.Load()
}

// Err returns the first failure reported by a run of this scope so far.
// Cancellations are not failures.
func (sc *Scope) Err() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.firstErr
}

// Await blocks with adaptive backoff until every launched run has
// finished, then returns the first failure, if any.
func (sc *Scope) Await() error {
	var bo iox.Backoff
	for sc.running.Load() != 0 {
		bo.Wait()
	}
	return sc.Err()
}

// enter accounts a new run.
func (sc *Scope) enter() {
	sc.running.Add(1)
}

// finished accounts a completed run. err is nil on success and
// ErrCanceled for terminated runs.
func (sc *Scope) finished(err error) {
	if err != nil && err != ErrCanceled {
		sc.mu.Lock()
		if sc.firstErr == nil {
			sc.firstErr = err
		}
		sc.mu.Unlock()
	}
	sc.running.Add(^uint32(0))
}
