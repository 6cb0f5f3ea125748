// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build sdl

package sdlwindow

import "github.com/veandco/go-sdl2/sdl"

// nativeHandles extracts the display and window handles the GPU backend
// needs to create a surface.
func nativeHandles(info *sdl.SysWMInfo) (display, handle uintptr) {
	switch info.Subsystem {
	case sdl.SYSWM_X11:
		x := info.GetX11Info()
		return uintptr(x.Display), uintptr(x.Window)
	case sdl.SYSWM_WINDOWS:
		return 0, uintptr(info.GetWindowsInfo().Window)
	case sdl.SYSWM_COCOA:
		return 0, uintptr(info.GetCocoaInfo().Window)
	}
	return 0, 0
}
