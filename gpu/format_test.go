// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		format gputypes.TextureFormat
		want   uint32
	}{
		{gputypes.TextureFormatR8Unorm, 1},
		{gputypes.TextureFormatStencil8, 1},
		{gputypes.TextureFormatR16Float, 2},
		{gputypes.TextureFormatRG8Uint, 2},
		{gputypes.TextureFormatDepth16Unorm, 2},
		{gputypes.TextureFormatRGBA8Unorm, 4},
		{gputypes.TextureFormatBGRA8UnormSrgb, 4},
		{gputypes.TextureFormatRGB10A2Unorm, 4},
		{gputypes.TextureFormatRG11B10Ufloat, 4},
		{gputypes.TextureFormatDepth32Float, 4},
		{gputypes.TextureFormatRG32Float, 8},
		{gputypes.TextureFormatRGBA16Float, 8},
		{gputypes.TextureFormatRGBA32Float, 16},
		{gputypes.TextureFormatRGBA32Sint, 16},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			got, err := FormatSize(tt.format)
			if err != nil {
				t.Fatalf("FormatSize(%v) error = %v", tt.format, err)
			}
			if got != tt.want {
				t.Errorf("FormatSize(%v) = %d, want %d", tt.format, got, tt.want)
			}
		})
	}
}

// TestFormatSizeCoversUncompressed checks every format below the compressed
// range either has a size or is one of the known unsized formats.
func TestFormatSizeCoversUncompressed(t *testing.T) {
	unsized := map[gputypes.TextureFormat]bool{
		gputypes.TextureFormatUndefined:            true,
		gputypes.TextureFormatDepth24Plus:          true,
		gputypes.TextureFormatDepth24PlusStencil8:  true,
		gputypes.TextureFormatDepth32FloatStencil8: true,
	}
	for f := gputypes.TextureFormatUndefined; f < gputypes.TextureFormatBC1RGBAUnorm; f++ {
		_, err := FormatSize(f)
		if unsized[f] && err == nil {
			t.Errorf("FormatSize(%v) succeeded, want error", f)
		}
		if !unsized[f] && err != nil {
			t.Errorf("FormatSize(%v) error = %v, want size", f, err)
		}
	}
}

func TestFormatSizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format gputypes.TextureFormat
	}{
		{"undefined", gputypes.TextureFormatUndefined},
		{"bc1", gputypes.TextureFormatBC1RGBAUnorm},
		{"bc7", gputypes.TextureFormatBC7RGBAUnormSrgb},
		{"etc2", gputypes.TextureFormatETC2RGBA8Unorm},
		{"eac", gputypes.TextureFormatEACRG11Snorm},
		{"astc", gputypes.TextureFormatASTC12x12UnormSrgb},
		{"depth24plus", gputypes.TextureFormatDepth24Plus},
		{"depth32stencil8", gputypes.TextureFormatDepth32FloatStencil8},
		{"out of range", gputypes.TextureFormat(0xFFFF)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FormatSize(tt.format)
			var ufe *UnsupportedFormatError
			if !errors.As(err, &ufe) {
				t.Fatalf("FormatSize(%v) error = %v, want *UnsupportedFormatError", tt.format, err)
			}
			if ufe.Format != tt.format {
				t.Errorf("Format = %v, want %v", ufe.Format, tt.format)
			}
		})
	}
}

func TestMustFormatSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustFormatSize(Undefined) did not panic")
		}
	}()
	MustFormatSize(gputypes.TextureFormatUndefined)
}
