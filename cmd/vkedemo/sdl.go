// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build sdl

package main

import (
	// Register the SDL window platform.
	_ "github.com/gogpu/vke/window/sdlwindow"
)
