// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package window

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/vke/event"
	"github.com/gogpu/vke/gpu"
)

// HeadlessName is the registered name of the headless platform.
const HeadlessName = "headless"

// Headless is a platform without a display. Its windows have no native
// handles; resizes and close requests are injected by the caller and
// delivered on the next Poll, like OS events.
type Headless struct {
	mu      sync.Mutex
	windows []*HeadlessWindow
	queued  []func()
	polls   int
	quit    bool
	closed  bool
}

var _ Platform = (*Headless)(nil)

// NewHeadless returns a headless platform.
func NewHeadless() *Headless { return &Headless{} }

// Name implements Platform.
func (p *Headless) Name() string { return HeadlessName }

// CreateWindow implements Platform.
func (p *Headless) CreateWindow(opts Options) (Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("window: invalid size %dx%d", opts.Width, opts.Height)
	}
	w := &HeadlessWindow{
		platform: p,
		title:    opts.Title,
		provider: gpucontext.NullWindowProvider{W: opts.Width, H: opts.Height},
		resized:  event.New[gpu.Extent]("resized"),
	}
	p.windows = append(p.windows, w)
	return w, nil
}

// Poll implements Platform by delivering the events queued since the
// previous Poll.
func (p *Headless) Poll() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	queued := p.queued
	p.queued = nil
	p.polls++
	p.mu.Unlock()

	for _, fn := range queued {
		fn()
	}
	return nil
}

// QuitRequested implements Platform.
func (p *Headless) QuitRequested() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quit
}

// RequestQuit simulates an application quit request from the OS;
// QuitRequested reports true after the next Poll.
func (p *Headless) RequestQuit() {
	p.enqueue(func() {
		p.mu.Lock()
		p.quit = true
		p.mu.Unlock()
	})
}

// Polls returns how many times Poll ran.
func (p *Headless) Polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

// Windows returns the open windows.
func (p *Headless) Windows() []*HeadlessWindow {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*HeadlessWindow, len(p.windows))
	copy(out, p.windows)
	return out
}

// Destroy implements Platform.
func (p *Headless) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.windows) > 0 {
		slogger().Warn("window: headless platform destroyed with open windows", "count", len(p.windows))
	}
	p.closed = true
	p.queued = nil
}

func (p *Headless) enqueue(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queued = append(p.queued, fn)
}

func (p *Headless) forget(w *HeadlessWindow) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, x := range p.windows {
		if x == w {
			p.windows = append(p.windows[:i], p.windows[i+1:]...)
			return
		}
	}
}

// HeadlessWindow is a window of the Headless platform.
type HeadlessWindow struct {
	platform *Headless
	title    string
	provider gpucontext.NullWindowProvider
	resized  *event.Signal[gpu.Extent]

	closeRequested bool
	redraws        int
	closed         bool
}

var _ Window = (*HeadlessWindow)(nil)

// Title implements Window.
func (w *HeadlessWindow) Title() string { return w.title }

// Size implements gpucontext.WindowProvider.
func (w *HeadlessWindow) Size() (int, int) { return w.provider.Size() }

// ScaleFactor implements gpucontext.WindowProvider.
func (w *HeadlessWindow) ScaleFactor() float64 { return w.provider.ScaleFactor() }

// RequestRedraw implements gpucontext.WindowProvider.
func (w *HeadlessWindow) RequestRedraw() { w.redraws++ }

// Redraws returns the number of redraw requests.
func (w *HeadlessWindow) Redraws() int { return w.redraws }

// NativeHandles implements gpu.NativeWindow. Headless windows have none.
func (w *HeadlessWindow) NativeHandles() (display, window uintptr) { return 0, 0 }

// Resized implements Window.
func (w *HeadlessWindow) Resized() *event.Signal[gpu.Extent] { return w.resized }

// CloseRequested implements Window.
func (w *HeadlessWindow) CloseRequested() bool { return w.closeRequested }

// Resize changes the window size at the next Poll.
func (w *HeadlessWindow) Resize(width, height int) {
	w.platform.enqueue(func() {
		if w.closed {
			return
		}
		w.provider.W, w.provider.H = width, height
		w.resized.Fire(gpu.Extent{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))})
	})
}

// SetScaleFactor changes the DPI scale factor reported by the window.
func (w *HeadlessWindow) SetScaleFactor(sf float64) { w.provider.SF = sf }

// RequestClose simulates the user closing the window; CloseRequested
// reports true after the next Poll.
func (w *HeadlessWindow) RequestClose() {
	w.platform.enqueue(func() { w.closeRequested = true })
}

// Close implements Window.
func (w *HeadlessWindow) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.platform.forget(w)
	return nil
}
