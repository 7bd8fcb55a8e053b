// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package coro

// Param is a typed key for named parameter storage in a [Continuation] or
// [Scope]. The type parameter pins the stored value's type at compile
// time; storage itself is erased.
type Param[T any] struct {
	name string
}

// NewParam creates a typed parameter key with the given name. Keys with
// equal names address the same slot.
func NewParam[T any](name string) Param[T] {
	return Param[T]{name: name}
}

// Name returns the name of the parameter key.
func (p Param[T]) Name() string {
	return p.name
}

// GetParam returns the value stored under p in the continuation, and
// whether a value of the expected type was present.
func GetParam[T any](c *Continuation, p Param[T]) (T, bool) {
	v, ok := c.Value(p.name)
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](v)
}

// SetParam stores v under p in the continuation.
func SetParam[T any](c *Continuation, p Param[T], v T) {
	c.SetValue(p.name, v)
}

// GetScopeParam returns the value stored under p in the scope, and
// whether a value of the expected type was present.
func GetScopeParam[T any](sc *Scope, p Param[T]) (T, bool) {
	v, ok := sc.Value(p.name)
	if !ok {
		var zero T
		return zero, false
	}
	return as[T](v)
}

// SetScopeParam stores v under p in the scope.
func SetScopeParam[T any](sc *Scope, p Param[T], v T) {
	sc.SetValue(p.name, v)
}
