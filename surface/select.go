// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/gpu"
)

// PreferredFormat is chosen when the surface supports it.
const PreferredFormat = gputypes.TextureFormatBGRA8UnormSrgb

// ChooseFormat picks the swapchain format.
func ChooseFormat(formats []gputypes.TextureFormat) gputypes.TextureFormat {
	if slices.Contains(formats, PreferredFormat) {
		return PreferredFormat
	}
	if len(formats) == 0 {
		return gputypes.TextureFormatUndefined
	}
	return formats[0]
}

// ChoosePresentMode picks the present mode. Fifo is always available.
func ChoosePresentMode(modes []gputypes.PresentMode, vsync bool) gputypes.PresentMode {
	if slices.Contains(modes, gputypes.PresentModeMailbox) {
		return gputypes.PresentModeMailbox
	}
	if !vsync && slices.Contains(modes, gputypes.PresentModeImmediate) {
		return gputypes.PresentModeImmediate
	}
	return gputypes.PresentModeFifo
}

// ChooseExtent picks the swapchain extent for a window of the given size.
func ChooseExtent(caps gpu.SurfaceCapabilities, width, height int) gpu.Extent {
	if !caps.CurrentExtent.IsZero() {
		return caps.CurrentExtent
	}
	return gpu.Extent{
		Width:  clamp(uint32(max(width, 0)), caps.MinExtent.Width, caps.MaxExtent.Width),
		Height: clamp(uint32(max(height, 0)), caps.MinExtent.Height, caps.MaxExtent.Height),
	}
}

// ChooseImageCount requests one image more than the minimum.
func ChooseImageCount(caps gpu.SurfaceCapabilities) uint32 {
	n := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

// clamp limits v to [lo, hi]; hi of zero means no upper bound.
func clamp(v, lo, hi uint32) uint32 {
	if hi > 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
