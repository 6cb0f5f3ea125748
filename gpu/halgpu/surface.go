// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vke/gpu"
)

const (
	minImageCount = 2
	maxImageCount = 3
)

// Surface adapts a hal.Surface to gpu.NativeSurface.
type Surface struct {
	hal   hal.Surface
	alpha gputypes.CompositeAlphaMode
}

var _ gpu.NativeSurface = (*Surface)(nil)

// Capabilities implements gpu.NativeSurface. hal manages the image count
// itself, so the reported range is the one the swapchain proxies support.
func (s *Surface) Capabilities(a gpu.Adapter) (gpu.SurfaceCapabilities, error) {
	ad, ok := a.(*Adapter)
	if !ok {
		return gpu.SurfaceCapabilities{}, fmt.Errorf("halgpu: adapter of foreign type %T", a)
	}
	caps := ad.exposed.Adapter.SurfaceCapabilities(s.hal)
	if caps == nil {
		return gpu.SurfaceCapabilities{}, fmt.Errorf("halgpu: adapter %q cannot present to surface: %w",
			ad.exposed.Info.Name, gpu.ErrSurfaceLost)
	}
	s.alpha = chooseAlpha(caps.AlphaModes)

	maxDim := ad.exposed.Capabilities.Limits.MaxTextureDimension2D
	if maxDim == 0 {
		maxDim = gputypes.DefaultLimits().MaxTextureDimension2D
	}
	return gpu.SurfaceCapabilities{
		Formats:       slices.Clone(caps.Formats),
		PresentModes:  slices.Clone(caps.PresentModes),
		MinImageCount: minImageCount,
		MaxImageCount: maxImageCount,
		MinExtent:     gpu.Extent{Width: 1, Height: 1},
		MaxExtent:     gpu.Extent{Width: maxDim, Height: maxDim},
	}, nil
}

func chooseAlpha(modes []gputypes.CompositeAlphaMode) gputypes.CompositeAlphaMode {
	switch {
	case slices.Contains(modes, gputypes.CompositeAlphaModeOpaque):
		return gputypes.CompositeAlphaModeOpaque
	case len(modes) > 0:
		return modes[0]
	default:
		return gputypes.CompositeAlphaModeAuto
	}
}

// CreateSwapchain implements gpu.NativeSurface by reconfiguring the hal
// surface. old is retired and no longer owns the configuration.
func (s *Surface) CreateSwapchain(dev gpu.Device, cfg gpu.SwapchainConfig, old gpu.Swapchain) (gpu.Swapchain, error) {
	d, ok := dev.(*Device)
	if !ok {
		return nil, fmt.Errorf("halgpu: device of foreign type %T", dev)
	}
	if cfg.ImageCount == 0 {
		return nil, errors.New("halgpu: swapchain with no images")
	}
	if o, ok := old.(*swapchain); ok && o.surface == s {
		o.discard()
		o.retired = true
	}
	err := s.hal.Configure(d.hal, &hal.SurfaceConfiguration{
		Width:       cfg.Extent.Width,
		Height:      cfg.Extent.Height,
		Format:      cfg.Format,
		Usage:       gputypes.TextureUsageRenderAttachment,
		PresentMode: cfg.PresentMode,
		AlphaMode:   s.alpha,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: configure surface %dx%d: %w", cfg.Extent.Width, cfg.Extent.Height, mapError(err))
	}

	sc := &swapchain{surface: s, dev: d, cfg: cfg, images: make([]gpu.Image, cfg.ImageCount)}
	for i := range sc.images {
		sc.images[i] = &image{format: cfg.Format, extent: cfg.Extent}
	}
	slogger().Debug("halgpu: surface configured",
		"format", cfg.Format, "mode", cfg.PresentMode, "width", cfg.Extent.Width, "height", cfg.Extent.Height)
	return sc, nil
}

// Destroy implements gpu.NativeSurface.
func (s *Surface) Destroy() { s.hal.Destroy() }

// image is a swapchain slot. hal hands out surface textures one at a time;
// each acquired texture is bound to the next slot until it is presented.
type image struct {
	format gputypes.TextureFormat
	extent gpu.Extent
	tex    hal.SurfaceTexture
}

func (i *image) Format() gputypes.TextureFormat { return i.format }
func (i *image) Extent() gpu.Extent             { return i.extent }

// imageView creates its hal view on first use for each texture bound to
// its image.
type imageView struct {
	dev  *Device
	img  *image
	tex  hal.SurfaceTexture
	view hal.TextureView
}

func (v *imageView) Image() gpu.Image { return v.img }

func (v *imageView) resolve() (hal.TextureView, error) {
	if v.img.tex == nil {
		return nil, errors.New("halgpu: render to an image that is not acquired")
	}
	if v.view != nil && v.tex == v.img.tex {
		return v.view, nil
	}
	v.release()
	view, err := v.dev.hal.CreateTextureView(v.img.tex, &hal.TextureViewDescriptor{
		Label:     "vke_swapchain_view",
		Format:    v.img.format,
		Dimension: gputypes.TextureViewDimension2D,
		Aspect:    gputypes.TextureAspectAll,
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create texture view: %w", err)
	}
	v.tex, v.view = v.img.tex, view
	return view, nil
}

func (v *imageView) release() {
	if v.view != nil {
		v.dev.hal.DestroyTextureView(v.view)
		v.view, v.tex = nil, nil
	}
}

type swapchain struct {
	surface *Surface
	dev     *Device
	cfg     gpu.SwapchainConfig
	images  []gpu.Image

	next     uint32
	acquired *image
	retired  bool
}

func (s *swapchain) Config() gpu.SwapchainConfig { return s.cfg }
func (s *swapchain) Images() []gpu.Image         { return s.images }

func (s *swapchain) Acquire(gpu.Semaphore) (gpu.Acquisition, error) {
	if s.retired {
		return gpu.Acquisition{}, fmt.Errorf("halgpu: acquire from retired swapchain: %w", gpu.ErrOutOfDate)
	}
	s.discard()
	at, err := s.surface.hal.AcquireTexture(nil)
	if err != nil {
		return gpu.Acquisition{}, fmt.Errorf("halgpu: acquire: %w", mapError(err))
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	img := s.images[idx].(*image)
	img.tex = at.Texture
	s.acquired = img
	return gpu.Acquisition{Index: idx, Suboptimal: at.Suboptimal}, nil
}

func (s *swapchain) Present(index uint32, _ gpu.Semaphore) (bool, error) {
	if int(index) >= len(s.images) {
		return false, fmt.Errorf("halgpu: present index %d of %d images", index, len(s.images))
	}
	img := s.images[index].(*image)
	if img.tex == nil || img != s.acquired {
		return false, fmt.Errorf("halgpu: present of image %d that is not acquired", index)
	}
	s.acquired = nil
	if err := s.dev.queue.Present(s.surface.hal, img.tex, nil); err != nil {
		return false, fmt.Errorf("halgpu: present: %w", mapError(err))
	}
	return false, nil
}

// discard returns an acquired but unpresented texture to the surface.
func (s *swapchain) discard() {
	if s.acquired != nil {
		s.surface.hal.DiscardTexture(s.acquired.tex)
		s.acquired.tex = nil
		s.acquired = nil
	}
}

func (s *swapchain) Destroy() {
	s.discard()
	if !s.retired {
		s.retired = true
		s.surface.hal.Unconfigure(s.dev.hal)
	}
}
