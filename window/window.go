// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package window provides OS windows for presentation surfaces and the
// manager that ties each window to its surface and to the engine loop.
//
// Windows come from a Platform. Platforms register themselves by name and
// priority; the headless platform is always registered and needs no display.
// The SDL platform lives in window/sdlwindow behind the sdl build tag.
package window

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/vke/event"
	"github.com/gogpu/vke/gpu"
	"github.com/gogpu/vke/surface"
)

// Window is an OS window a surface can present to.
//
// Size reports the drawable size in pixels.
type Window interface {
	gpucontext.WindowProvider
	gpu.NativeWindow

	// Title returns the window title.
	Title() string

	// Resized fires after the drawable size changed, during Platform.Poll.
	Resized() *event.Signal[gpu.Extent]

	// CloseRequested reports whether the user asked to close the window.
	CloseRequested() bool

	// Close destroys the window.
	Close() error
}

var _ surface.Window = (Window)(nil)

// Options describes a window to create.
type Options struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
}

// DefaultOptions returns an 800x600 resizable window titled "vke".
func DefaultOptions() Options {
	return Options{Title: "vke", Width: 800, Height: 600, Resizable: true}
}

// Platform creates windows and pumps OS events.
type Platform interface {
	// Name returns the registered platform name.
	Name() string

	// CreateWindow opens a window.
	CreateWindow(opts Options) (Window, error)

	// Poll processes pending OS events. Resize and close events are
	// delivered through the windows' signals and flags.
	Poll() error

	// QuitRequested reports whether the OS asked the application to quit,
	// as opposed to closing a single window.
	QuitRequested() bool

	// Destroy shuts the platform down. All windows must be closed first.
	Destroy()
}
