// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"math"

	"github.com/gogpu/gputypes"
)

// RainbowSpeed is the hue rotation of Rainbow in degrees per second.
const RainbowSpeed = 64.0

// Rainbow is a Generic recorder whose clear color cycles through the hue
// circle over time.
type Rainbow struct {
	*Generic
}

// NewRainbow creates a Rainbow recorder for s.
func NewRainbow(s ImageSupplier, opts ...GenericOption) (*Rainbow, error) {
	g, err := NewGeneric(s, opts...)
	if err != nil {
		return nil, err
	}
	return &Rainbow{Generic: g}, nil
}

// RenderFrameEarly sets the clear color for the frame.
func (r *Rainbow) RenderFrameEarly(info FrameInfo) error {
	hue := math.Mod(info.Elapsed.Seconds()*RainbowSpeed, 360)
	r.SetClearColor(HSV(hue, 1, 1))
	return nil
}

// HSV converts hue in degrees, saturation and value in [0, 1] to an opaque color.
func HSV(h, s, v float64) gputypes.Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return gputypes.Color{R: r + m, G: g + m, B: b + m, A: 1}
}
