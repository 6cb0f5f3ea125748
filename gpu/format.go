// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import "github.com/gogpu/gputypes"

// FormatSize returns the size in bytes of one texel of f.
//
// It fails with *UnsupportedFormatError for the undefined format, for
// block-compressed formats, and for formats whose layout is either
// implementation-defined or split over several aspects.
func FormatSize(f gputypes.TextureFormat) (uint32, error) {
	switch f {
	case gputypes.TextureFormatR8Unorm,
		gputypes.TextureFormatR8Snorm,
		gputypes.TextureFormatR8Uint,
		gputypes.TextureFormatR8Sint,
		gputypes.TextureFormatStencil8:
		return 1, nil

	case gputypes.TextureFormatR16Unorm,
		gputypes.TextureFormatR16Snorm,
		gputypes.TextureFormatR16Uint,
		gputypes.TextureFormatR16Sint,
		gputypes.TextureFormatR16Float,
		gputypes.TextureFormatRG8Unorm,
		gputypes.TextureFormatRG8Snorm,
		gputypes.TextureFormatRG8Uint,
		gputypes.TextureFormatRG8Sint,
		gputypes.TextureFormatDepth16Unorm:
		return 2, nil

	case gputypes.TextureFormatR32Float,
		gputypes.TextureFormatR32Uint,
		gputypes.TextureFormatR32Sint,
		gputypes.TextureFormatRG16Unorm,
		gputypes.TextureFormatRG16Snorm,
		gputypes.TextureFormatRG16Uint,
		gputypes.TextureFormatRG16Sint,
		gputypes.TextureFormatRG16Float,
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatRGBA8Snorm,
		gputypes.TextureFormatRGBA8Uint,
		gputypes.TextureFormatRGBA8Sint,
		gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatRGB10A2Uint,
		gputypes.TextureFormatRGB10A2Unorm,
		gputypes.TextureFormatRG11B10Ufloat,
		gputypes.TextureFormatRGB9E5Ufloat,
		gputypes.TextureFormatDepth32Float:
		return 4, nil

	case gputypes.TextureFormatRG32Float,
		gputypes.TextureFormatRG32Uint,
		gputypes.TextureFormatRG32Sint,
		gputypes.TextureFormatRGBA16Unorm,
		gputypes.TextureFormatRGBA16Snorm,
		gputypes.TextureFormatRGBA16Uint,
		gputypes.TextureFormatRGBA16Sint,
		gputypes.TextureFormatRGBA16Float:
		return 8, nil

	case gputypes.TextureFormatRGBA32Float,
		gputypes.TextureFormatRGBA32Uint,
		gputypes.TextureFormatRGBA32Sint:
		return 16, nil

	case gputypes.TextureFormatUndefined:
		return 0, &UnsupportedFormatError{Format: f, Reason: "undefined format"}

	case gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8:
		return 0, &UnsupportedFormatError{Format: f, Reason: "implementation-defined layout"}

	case gputypes.TextureFormatDepth32FloatStencil8:
		return 0, &UnsupportedFormatError{Format: f, Reason: "multi-aspect format"}
	}

	if isCompressed(f) {
		return 0, &UnsupportedFormatError{Format: f, Reason: "block-compressed format"}
	}
	return 0, &UnsupportedFormatError{Format: f, Reason: "unknown format"}
}

// MustFormatSize is like FormatSize but panics on error. Use it where the
// format is a program constant.
func MustFormatSize(f gputypes.TextureFormat) uint32 {
	n, err := FormatSize(f)
	if err != nil {
		panic(err)
	}
	return n
}

// isCompressed reports whether f is one of the BC, ETC2, EAC or ASTC formats,
// which are laid out contiguously in the enumeration.
func isCompressed(f gputypes.TextureFormat) bool {
	return f >= gputypes.TextureFormatBC1RGBAUnorm && f <= gputypes.TextureFormatASTC12x12UnormSrgb
}
