// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"slices"
)

// Stack is an ordered list of renderers rendered once per frame.
//
// The stack does not own its renderers. A renderer can be in at most one
// stack at a time.
type Stack struct {
	renderers []*Renderer
}

// Push appends r. It panics if r is already in a stack or closed.
func (s *Stack) Push(r *Renderer) {
	if r.closed {
		panic("render: push of closed renderer " + r.label)
	}
	if r.stack != nil {
		panic("render: renderer " + r.label + " is already in a stack")
	}
	r.stack = s
	s.renderers = append(s.renderers, r)
}

// Remove removes r by identity and reports whether it was present.
// Removing a renderer that is not in s is a no-op.
func (s *Stack) Remove(r *Renderer) bool {
	i := slices.Index(s.renderers, r)
	if i < 0 {
		return false
	}
	s.renderers = slices.Delete(slices.Clone(s.renderers), i, i+1)
	r.stack = nil
	return true
}

// Clear removes every renderer without closing it.
func (s *Stack) Clear() {
	for _, r := range s.renderers {
		r.stack = nil
	}
	s.renderers = nil
}

// Len returns the number of renderers in the stack.
func (s *Stack) Len() int { return len(s.renderers) }

// Renderers returns the renderers in insertion order.
func (s *Stack) Renderers() []*Renderer { return slices.Clone(s.renderers) }

// Render renders one frame of every renderer in insertion order.
//
// A renderer whose supplier has no image this frame is skipped. Other
// failures do not stop the remaining renderers; they are joined and
// returned once all renderers ran.
func (s *Stack) Render() error {
	var errs []error
	for _, r := range s.renderers {
		err := r.Render()
		switch {
		case err == nil:
		case errors.Is(err, ErrImageNotAvailable):
			slogger().Debug("render: frame skipped", "renderer", r.label, "err", err)
		default:
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every renderer, last pushed first, leaving the stack empty.
func (s *Stack) Close() error {
	var errs []error
	for len(s.renderers) > 0 {
		r := s.renderers[len(s.renderers)-1]
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
		// Close removes r; guard against a renderer that was already closed.
		s.Remove(r)
	}
	return errors.Join(errs...)
}
