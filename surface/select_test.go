// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/gpu"
)

func TestChooseFormat(t *testing.T) {
	tests := []struct {
		name    string
		formats []gputypes.TextureFormat
		want    gputypes.TextureFormat
	}{
		{"preferred", []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb}, gputypes.TextureFormatBGRA8UnormSrgb},
		{"first", []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm}, gputypes.TextureFormatRGBA8Unorm},
		{"none", nil, gputypes.TextureFormatUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseFormat(tt.formats); got != tt.want {
				t.Errorf("ChooseFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	fifo := gputypes.PresentModeFifo
	mailbox := gputypes.PresentModeMailbox
	immediate := gputypes.PresentModeImmediate

	tests := []struct {
		name  string
		modes []gputypes.PresentMode
		vsync bool
		want  gputypes.PresentMode
	}{
		{"mailbox wins", []gputypes.PresentMode{fifo, immediate, mailbox}, false, mailbox},
		{"mailbox wins with vsync", []gputypes.PresentMode{fifo, mailbox}, true, mailbox},
		{"immediate without vsync", []gputypes.PresentMode{fifo, immediate}, false, immediate},
		{"fifo with vsync", []gputypes.PresentMode{fifo, immediate}, true, fifo},
		{"fifo fallback", []gputypes.PresentMode{fifo}, false, fifo},
		{"empty", nil, false, fifo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChoosePresentMode(tt.modes, tt.vsync); got != tt.want {
				t.Errorf("ChoosePresentMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChooseExtent(t *testing.T) {
	caps := gpu.SurfaceCapabilities{
		MinExtent: gpu.Extent{Width: 16, Height: 16},
		MaxExtent: gpu.Extent{Width: 4096, Height: 2048},
	}

	tests := []struct {
		name string
		caps gpu.SurfaceCapabilities
		w, h int
		want gpu.Extent
	}{
		{"window size", caps, 800, 600, gpu.Extent{Width: 800, Height: 600}},
		{"clamped high", caps, 5000, 3000, gpu.Extent{Width: 4096, Height: 2048}},
		{"clamped low", caps, 1, 0, gpu.Extent{Width: 16, Height: 16}},
		{"negative", caps, -5, 20, gpu.Extent{Width: 16, Height: 20}},
		{"unbounded", gpu.SurfaceCapabilities{}, 9000, 9000, gpu.Extent{Width: 9000, Height: 9000}},
		{
			"current extent",
			gpu.SurfaceCapabilities{CurrentExtent: gpu.Extent{Width: 320, Height: 200}, MaxExtent: caps.MaxExtent},
			800, 600,
			gpu.Extent{Width: 320, Height: 200},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChooseExtent(tt.caps, tt.w, tt.h); got != tt.want {
				t.Errorf("ChooseExtent(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
			}
		})
	}
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max uint32
		want     uint32
	}{
		{2, 8, 3},
		{2, 0, 3},
		{3, 3, 3},
		{1, 2, 2},
	}
	for _, tt := range tests {
		caps := gpu.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
		if got := ChooseImageCount(caps); got != tt.want {
			t.Errorf("ChooseImageCount(min=%d, max=%d) = %d, want %d", tt.min, tt.max, got, tt.want)
		}
	}
}
