// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build sdl

// Package sdlwindow registers an SDL2 window platform under the name "sdl".
//
// SDL must be driven from the main OS thread. Programs using this platform
// call runtime.LockOSThread from an init function of package main and run
// the engine on the main goroutine.
package sdlwindow

import (
	"fmt"
	"sync"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/gogpu/vke/event"
	"github.com/gogpu/vke/gpu"
	"github.com/gogpu/vke/window"
)

// Name is the registered platform name.
const Name = "sdl"

func init() {
	window.Register(Name, 100, Open, nil)
}

// Platform is an SDL2 window platform.
type Platform struct {
	windows map[uint32]*Window
	quit    bool
	closed  bool
}

var _ window.Platform = (*Platform)(nil)

var initOnce sync.Once
var initErr error

// Open initializes the SDL video subsystem.
func Open() (window.Platform, error) {
	initOnce.Do(func() {
		initErr = sdl.Init(sdl.INIT_VIDEO)
	})
	if initErr != nil {
		return nil, fmt.Errorf("sdlwindow: init: %w", initErr)
	}
	return &Platform{windows: make(map[uint32]*Window)}, nil
}

// Name implements window.Platform.
func (p *Platform) Name() string { return Name }

// CreateWindow implements window.Platform.
func (p *Platform) CreateWindow(opts window.Options) (window.Window, error) {
	if p.closed {
		return nil, window.ErrClosed
	}
	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_VULKAN)
	if opts.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}
	sw, err := sdl.CreateWindow(opts.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(opts.Width), int32(opts.Height), flags)
	if err != nil {
		return nil, fmt.Errorf("sdlwindow: create window: %w", err)
	}
	id, err := sw.GetID()
	if err != nil {
		_ = sw.Destroy()
		return nil, fmt.Errorf("sdlwindow: window id: %w", err)
	}
	w := &Window{
		platform: p,
		id:       id,
		sdl:      sw,
		title:    opts.Title,
		resized:  event.New[gpu.Extent]("resized"),
	}
	p.windows[id] = w
	return w, nil
}

// Poll implements window.Platform.
func (p *Platform) Poll() error {
	if p.closed {
		return window.ErrClosed
	}
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			p.quit = true
		case *sdl.WindowEvent:
			w, ok := p.windows[ev.WindowID]
			if !ok {
				continue
			}
			switch ev.Event {
			case sdl.WINDOWEVENT_CLOSE:
				w.closeRequested = true
			case sdl.WINDOWEVENT_SIZE_CHANGED, sdl.WINDOWEVENT_MINIMIZED, sdl.WINDOWEVENT_RESTORED:
				width, height := w.Size()
				w.resized.Fire(gpu.Extent{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))})
			}
		}
	}
	return nil
}

// QuitRequested implements window.Platform.
func (p *Platform) QuitRequested() bool { return p.quit }

// Destroy implements window.Platform.
func (p *Platform) Destroy() {
	if p.closed {
		return
	}
	p.closed = true
	for _, w := range p.windows {
		_ = w.Close()
	}
	sdl.Quit()
}

// Window is an SDL2 window.
type Window struct {
	platform *Platform
	id       uint32
	sdl      *sdl.Window
	title    string
	resized  *event.Signal[gpu.Extent]

	closeRequested bool
	closed         bool
}

var _ window.Window = (*Window)(nil)

// Title implements window.Window.
func (w *Window) Title() string { return w.title }

// Size returns the drawable size in pixels. A minimized window has zero
// size.
func (w *Window) Size() (int, int) {
	if w.closed || w.sdl.GetFlags()&sdl.WINDOW_MINIMIZED != 0 {
		return 0, 0
	}
	width, height := w.sdl.VulkanGetDrawableSize()
	return int(width), int(height)
}

// ScaleFactor implements gpucontext.WindowProvider as the ratio of drawable
// to logical width.
func (w *Window) ScaleFactor() float64 {
	lw, _ := w.sdl.GetSize()
	dw, _ := w.sdl.VulkanGetDrawableSize()
	if lw <= 0 || dw <= 0 {
		return 1
	}
	return float64(dw) / float64(lw)
}

// RequestRedraw implements gpucontext.WindowProvider. The engine renders
// continuously, so there is nothing to schedule.
func (w *Window) RequestRedraw() {}

// NativeHandles implements gpu.NativeWindow.
func (w *Window) NativeHandles() (display, handle uintptr) {
	info, err := w.sdl.GetWMInfo()
	if err != nil {
		return 0, 0
	}
	return nativeHandles(info)
}

// Resized implements window.Window.
func (w *Window) Resized() *event.Signal[gpu.Extent] { return w.resized }

// CloseRequested implements window.Window.
func (w *Window) CloseRequested() bool { return w.closeRequested }

// Close implements window.Window.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	delete(w.platform.windows, w.id)
	return w.sdl.Destroy()
}
