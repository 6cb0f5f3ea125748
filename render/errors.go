// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "errors"

var (
	// ErrImageNotAvailable means the supplier has no image for this frame,
	// for example because its swapchain is out of date. The frame is
	// skipped; the supplier recovers on its own.
	ErrImageNotAvailable = errors.New("render: image not available")

	// ErrClosed is returned by Render after Close.
	ErrClosed = errors.New("render: renderer closed")
)
