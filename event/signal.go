// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package event

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// Handle identifies one subscription. The zero Handle matches nothing.
type Handle struct {
	id uint64
}

// Valid reports whether h was returned by a Subscribe call.
func (h Handle) Valid() bool { return h.id != 0 }

// handleSeq is shared by every signal so handles never collide across signals.
var handleSeq atomic.Uint64

type entry[F any] struct {
	id      uint64
	fn      F
	removed bool
}

// list is the subscriber bookkeeping shared by Signal and ErrSignal.
type list[F any] struct {
	name    string
	entries []*entry[F]

	// owner is the goroutine id of the fire in progress, 0 when idle.
	// depth counts nested fires and is only touched by the owner.
	owner atomic.Int64
	depth int
}

func (l *list[F]) add(fn F) Handle {
	e := &entry[F]{id: handleSeq.Add(1), fn: fn}
	l.entries = append(l.entries, e)
	return Handle{id: e.id}
}

func (l *list[F]) remove(h Handle) bool {
	if h.id == 0 {
		return false
	}
	for i, e := range l.entries {
		if e.id != h.id {
			continue
		}
		e.removed = true
		// Copy instead of shifting in place: a fire in progress holds the old slice.
		next := make([]*entry[F], 0, len(l.entries)-1)
		next = append(next, l.entries[:i]...)
		l.entries = append(next, l.entries[i+1:]...)
		return true
	}
	return false
}

func (l *list[F]) enter() []*entry[F] {
	gid := goid.Get()
	for !l.owner.CompareAndSwap(0, gid) {
		prev := l.owner.Load()
		if prev == gid {
			break
		}
		if prev != 0 {
			panic(fmt.Sprintf("event: signal %q fired from goroutine %d while goroutine %d is firing it", l.name, gid, prev))
		}
	}
	l.depth++
	return l.entries
}

func (l *list[F]) exit() {
	l.depth--
	if l.depth == 0 {
		l.owner.Store(0)
	}
}

// Signal is an ordered broadcast point carrying a value of type T.
// Stages that need an output argument use a pointer type for T.
//
// The zero value is an unnamed signal ready to use.
type Signal[T any] struct {
	l list[func(T)]
}

// New creates a named signal. The name appears in diagnostics only.
func New[T any](name string) *Signal[T] {
	return &Signal[T]{l: list[func(T)]{name: name}}
}

// Name returns the diagnostic name of the signal.
func (s *Signal[T]) Name() string { return s.l.name }

// Subscribe appends fn to the subscriber list.
func (s *Signal[T]) Subscribe(fn func(T)) Handle {
	if fn == nil {
		panic("event: nil subscriber")
	}
	return s.l.add(fn)
}

// Unsubscribe removes the subscription identified by h.
// It reports whether a subscription was removed; removing twice is a no-op.
func (s *Signal[T]) Unsubscribe(h Handle) bool {
	return s.l.remove(h)
}

// Len returns the number of current subscribers.
func (s *Signal[T]) Len() int { return len(s.l.entries) }

// Fire invokes every subscriber with v, in subscription order.
func (s *Signal[T]) Fire(v T) {
	snapshot := s.l.enter()
	defer s.l.exit()

	for _, e := range snapshot {
		if e.removed {
			continue
		}
		e.fn(v)
	}
}

// ErrSignal is a Signal whose subscribers may fail.
type ErrSignal[T any] struct {
	l list[func(T) error]
}

// NewErr creates a named fallible signal.
func NewErr[T any](name string) *ErrSignal[T] {
	return &ErrSignal[T]{l: list[func(T) error]{name: name}}
}

// Name returns the diagnostic name of the signal.
func (s *ErrSignal[T]) Name() string { return s.l.name }

// Subscribe appends fn to the subscriber list.
func (s *ErrSignal[T]) Subscribe(fn func(T) error) Handle {
	if fn == nil {
		panic("event: nil subscriber")
	}
	return s.l.add(fn)
}

// Unsubscribe removes the subscription identified by h.
func (s *ErrSignal[T]) Unsubscribe(h Handle) bool {
	return s.l.remove(h)
}

// Len returns the number of current subscribers.
func (s *ErrSignal[T]) Len() int { return len(s.l.entries) }

// Fire invokes subscribers in order and stops at the first error,
// which is returned unchanged.
func (s *ErrSignal[T]) Fire(v T) error {
	snapshot := s.l.enter()
	defer s.l.exit()

	for _, e := range snapshot {
		if e.removed {
			continue
		}
		if err := e.fn(v); err != nil {
			return err
		}
	}
	return nil
}

// FireAll invokes every subscriber even when some fail and returns
// the failures joined with errors.Join.
func (s *ErrSignal[T]) FireAll(v T) error {
	snapshot := s.l.enter()
	defer s.l.exit()

	var errs []error
	for _, e := range snapshot {
		if e.removed {
			continue
		}
		if err := e.fn(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
