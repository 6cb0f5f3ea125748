// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"image/color"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/colornames"

	"github.com/gogpu/vke/event"
	"github.com/gogpu/vke/gpu"
)

// DrawFunc records draw commands inside the rendering scope of a Generic
// recorder. Viewport and scissor already cover the whole image.
type DrawFunc func(cb gpu.CommandBuffer, info FrameInfo) error

// GenericOption configures a Generic recorder.
type GenericOption func(*Generic)

// WithClearColor sets the initial clear color.
func WithClearColor(c color.Color) GenericOption {
	return func(g *Generic) { g.clear = Color(c) }
}

// WithDraw sets the draw callback.
func WithDraw(fn DrawFunc) GenericOption {
	return func(g *Generic) { g.draw = fn }
}

// Generic is a FrameRecorder that clears each image and optionally draws
// into it using dynamic rendering. It keeps one image view per supplier
// image and rebuilds them when the supplier's images change.
type Generic struct {
	supplier ImageSupplier
	device   gpu.Device
	views    []gpu.ImageView

	clear gputypes.Color
	draw  DrawFunc

	scope    event.Scope
	released bool
}

// NewGeneric creates a Generic recorder for s.
func NewGeneric(s ImageSupplier, opts ...GenericOption) (*Generic, error) {
	g := &Generic{
		supplier: s,
		device:   s.Device(),
		clear:    Color(colornames.Black),
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.rebuildViews(s.Images()); err != nil {
		g.destroyViews()
		return nil, err
	}
	event.Subscribe(&g.scope, s.ImagesChanged(), g.onImagesChanged)
	return g, nil
}

func (g *Generic) onImagesChanged(images []gpu.Image) {
	if err := g.rebuildViews(images); err != nil {
		// Frames fail with ErrImageNotAvailable until the next change.
		slogger().Warn("render: rebuild image views", "err", err)
	}
}

func (g *Generic) rebuildViews(images []gpu.Image) error {
	g.destroyViews()
	views := make([]gpu.ImageView, 0, len(images))
	for i, img := range images {
		v, err := g.device.CreateImageView(img)
		if err != nil {
			g.views = views
			return fmt.Errorf("render: create view for image %d: %w", i, err)
		}
		views = append(views, v)
	}
	g.views = views
	return nil
}

func (g *Generic) destroyViews() {
	for _, v := range g.views {
		g.device.DestroyImageView(v)
	}
	g.views = nil
}

// ClearColor returns the current clear color.
func (g *Generic) ClearColor() gputypes.Color { return g.clear }

// SetClearColor sets the clear color used from the next recorded frame.
func (g *Generic) SetClearColor(c gputypes.Color) { g.clear = c }

// Draw returns the draw callback, or nil.
func (g *Generic) Draw() DrawFunc { return g.draw }

// Views returns the per-image views.
func (g *Generic) Views() []gpu.ImageView { return g.views }

// RenderFrame implements FrameRecorder.
func (g *Generic) RenderFrame(info FrameInfo) error {
	if int(info.ImageIndex) >= len(g.views) {
		return fmt.Errorf("%w: no view for image %d", ErrImageNotAvailable, info.ImageIndex)
	}
	cb := info.Commands
	area := gpu.Rect{Width: info.Extent.Width, Height: info.Extent.Height}

	cb.TransitionImage(info.Image, gpu.LayoutUndefined, gpu.LayoutColorAttachment)
	cb.BeginRendering(gpu.RenderingInfo{
		View:       g.views[info.ImageIndex],
		Area:       area,
		ClearColor: g.clear,
	})
	var drawErr error
	if g.draw != nil {
		SetViewport(cb, info.Extent)
		SetScissor(cb, info.Extent)
		drawErr = g.draw(cb, info)
	}
	cb.EndRendering()
	cb.TransitionImage(info.Image, gpu.LayoutColorAttachment, gpu.LayoutPresent)
	return drawErr
}

// Release drops the images-changed subscription and destroys the views.
func (g *Generic) Release() error {
	if g.released {
		return nil
	}
	g.released = true
	g.scope.Close()
	g.destroyViews()
	return nil
}

// SetViewport sets a viewport covering extent with depth range [0, 1].
func SetViewport(cb gpu.CommandBuffer, extent gpu.Extent) {
	cb.SetViewport(gpu.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MaxDepth: 1,
	})
}

// SetScissor sets a scissor rectangle covering extent.
func SetScissor(cb gpu.CommandBuffer, extent gpu.Extent) {
	cb.SetScissor(gpu.Rect{Width: extent.Width, Height: extent.Height})
}

// Color converts a color.Color to a GPU clear color.
func Color(c color.Color) gputypes.Color {
	if c == nil {
		return gputypes.Color{}
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return gputypes.Color{}
	}
	// Un-premultiply: clear values are straight alpha.
	af := float64(a)
	return gputypes.Color{
		R: float64(r) / af,
		G: float64(g) / af,
		B: float64(b) / af,
		A: af / 0xffff,
	}
}

// NewGenericRenderer is a shortcut for NewGeneric followed by New.
func NewGenericRenderer(s ImageSupplier, opts Options, gopts ...GenericOption) (*Renderer, error) {
	g, err := NewGeneric(s, gopts...)
	if err != nil {
		return nil, err
	}
	r, err := New(s, g, opts)
	if err != nil {
		_ = g.Release()
		return nil, err
	}
	return r, nil
}
