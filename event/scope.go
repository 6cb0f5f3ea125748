// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package event

// Scope accumulates cancel functions and runs them in reverse order of
// registration when closed. The zero value is ready to use.
type Scope struct {
	cancels []func()
	closed  bool
}

// Add registers a cancel function. On a closed scope fn runs immediately.
func (s *Scope) Add(fn func()) {
	if fn == nil {
		return
	}
	if s.closed {
		fn()
		return
	}
	s.cancels = append(s.cancels, fn)
}

// Len returns the number of pending cancel functions.
func (s *Scope) Len() int { return len(s.cancels) }

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool { return s.closed }

// Close runs every registered cancel function, last registered first.
// Subsequent calls do nothing.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	s.cancels = nil
}

// Subscribe subscribes fn to sig and ties the subscription to scope.
func Subscribe[T any](scope *Scope, sig *Signal[T], fn func(T)) Handle {
	h := sig.Subscribe(fn)
	scope.Add(func() { sig.Unsubscribe(h) })
	return h
}

// SubscribeErr is Subscribe for fallible signals.
func SubscribeErr[T any](scope *Scope, sig *ErrSignal[T], fn func(T) error) Handle {
	h := sig.Subscribe(fn)
	scope.Add(func() { sig.Unsubscribe(h) })
	return h
}

// Hook is implemented by every Signal. It lets a subscriber that ignores
// the payload attach to a signal without knowing its type.
type Hook interface {
	Attach(scope *Scope, fn func())
}

// Attach subscribes fn, ignoring the payload, for the lifetime of scope.
func (s *Signal[T]) Attach(scope *Scope, fn func()) {
	Subscribe(scope, s, func(T) { fn() })
}

var _ Hook = (*Signal[int])(nil)
