// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package window

import (
	"errors"
	"fmt"

	"github.com/gogpu/vke/event"
	"github.com/gogpu/vke/owner"
	"github.com/gogpu/vke/surface"
)

// SurfaceFactory creates the presentation surface of a window.
type SurfaceFactory func(w Window) (*surface.Surface, error)

// ManagerConfig holds the collaborators of a Manager.
type ManagerConfig struct {
	Platform Platform

	// Surfaces creates a surface for every added window.
	Surfaces SurfaceFactory

	// Tree receives one node per window, owning the window's surface node.
	Tree *owner.Tree

	// OSPoll is the lifecycle stage that pumps OS events.
	OSPoll event.Hook

	// Quit is called from OSPoll when the platform requests the
	// application to quit.
	Quit func()
}

// Entry is a window managed by a Manager.
type Entry struct {
	Window  Window
	Surface *surface.Surface

	// Node is the surface's node in the ownership tree. Resources owned by
	// it, such as renderers drawing to the surface, are destroyed before
	// the surface.
	Node owner.Handle

	windowNode owner.Handle
	scope      event.Scope
}

// Manager owns windows and their surfaces.
type Manager struct {
	cfg     ManagerConfig
	entries []*Entry
	scope   event.Scope
	closed  bool
}

// NewManager creates a manager and subscribes the platform's event pump to
// cfg.OSPoll.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Platform == nil || cfg.Surfaces == nil || cfg.Tree == nil {
		panic("window: NewManager requires a platform, a surface factory and a tree")
	}
	m := &Manager{cfg: cfg}
	if cfg.OSPoll != nil {
		cfg.OSPoll.Attach(&m.scope, m.poll)
	}
	return m
}

func (m *Manager) poll() {
	if err := m.cfg.Platform.Poll(); err != nil {
		slogger().Warn("window: poll failed", "platform", m.cfg.Platform.Name(), "err", err)
		return
	}
	if m.cfg.Platform.QuitRequested() && m.cfg.Quit != nil {
		slogger().Debug("window: quit requested", "platform", m.cfg.Platform.Name())
		m.cfg.Quit()
	}
}

// Platform returns the manager's platform.
func (m *Manager) Platform() Platform { return m.cfg.Platform }

// Create opens a window on the platform and adds it.
func (m *Manager) Create(opts Options) (*Entry, error) {
	w, err := m.cfg.Platform.CreateWindow(opts)
	if err != nil {
		return nil, fmt.Errorf("window: create %q: %w", opts.Title, err)
	}
	e, err := m.Add(w)
	if err != nil {
		return nil, errors.Join(err, w.Close())
	}
	return e, nil
}

// Add registers w, creates its surface and places both in the ownership
// tree. Adding the same window twice panics.
func (m *Manager) Add(w Window) (*Entry, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if m.find(w) >= 0 {
		panic(fmt.Sprintf("window: %q added twice", w.Title()))
	}
	s, err := m.cfg.Surfaces(w)
	if err != nil {
		return nil, fmt.Errorf("window: surface for %q: %w", w.Title(), err)
	}

	e := &Entry{Window: w, Surface: s}
	e.windowNode = m.cfg.Tree.Add(owner.ReleaseFunc(w.Close))
	e.Node = m.cfg.Tree.Adopt(e.windowNode, s)

	if m.cfg.OSPoll != nil {
		m.cfg.OSPoll.Attach(&e.scope, func() {
			if !w.CloseRequested() {
				return
			}
			slogger().Debug("window: close requested", "title", w.Title())
			if err := m.Remove(w); err != nil {
				slogger().Warn("window: release failed", "title", w.Title(), "err", err)
			}
		})
	}
	m.entries = append(m.entries, e)
	slogger().Info("window: added", "title", w.Title())
	return e, nil
}

// Entry returns the entry of w, or nil.
func (m *Manager) Entry(w Window) *Entry {
	if i := m.find(w); i >= 0 {
		return m.entries[i]
	}
	return nil
}

// Entries returns the managed windows in the order they were added.
func (m *Manager) Entries() []*Entry {
	out := make([]*Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of managed windows.
func (m *Manager) Len() int { return len(m.entries) }

// ShouldClose reports whether no windows remain.
func (m *Manager) ShouldClose() bool { return len(m.entries) == 0 }

// Remove destroys w, its surface and everything the surface owns.
// Removing an unknown window is a no-op. It may be called from an OS-poll
// subscriber, which is how close requests remove their window.
func (m *Manager) Remove(w Window) error {
	i := m.find(w)
	if i < 0 {
		return nil
	}
	e := m.entries[i]
	m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
	e.scope.Close()
	return m.cfg.Tree.Destroy(e.windowNode)
}

// Close removes every window, most recently added first, and drops the
// OS-poll subscription. The platform is not destroyed.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	var errs []error
	for len(m.entries) > 0 {
		e := m.entries[len(m.entries)-1]
		if err := m.Remove(e.Window); err != nil {
			slogger().Warn("window: release failed", "title", e.Window.Title(), "err", err)
			errs = append(errs, err)
		}
	}
	m.scope.Close()
	return errors.Join(errs...)
}

func (m *Manager) find(w Window) int {
	for i, e := range m.entries {
		if e.Window == w {
			return i
		}
	}
	return -1
}
