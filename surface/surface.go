// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/event"
	"github.com/gogpu/vke/gpu"
	"github.com/gogpu/vke/render"
)

// Window is what a surface needs from its window.
type Window interface {
	gpu.NativeWindow

	// Size returns the drawable size in pixels.
	Size() (width, height int)

	// Resized fires after the window size changed.
	Resized() *event.Signal[gpu.Extent]
}

// Config holds the collaborators of a Surface.
type Config struct {
	Instance gpu.Instance
	Adapter  gpu.Adapter
	Device   gpu.Device
	Window   Window

	// PreRender is the lifecycle stage at which pending recreation runs.
	PreRender event.Hook

	// VSync prefers Fifo over Immediate when Mailbox is unavailable.
	VSync bool

	Label string
}

// Surface is a render.ImageSupplier presenting to a window.
type Surface struct {
	label   string
	adapter gpu.Adapter
	device  gpu.Device
	window  Window
	vsync   bool

	native    gpu.NativeSurface
	swapchain gpu.Swapchain
	images    []gpu.Image
	config    gpu.SwapchainConfig

	pending     bool
	recreations int

	changed event.Signal[[]gpu.Image]
	scope   event.Scope
	closed  bool
}

var _ render.ImageSupplier = (*Surface)(nil)

// New creates the native surface for cfg.Window and its first swapchain.
// ImagesChanged does not fire for the first swapchain.
func New(cfg Config) (*Surface, error) {
	if cfg.Instance == nil || cfg.Device == nil || cfg.Window == nil {
		panic("surface: New requires an instance, a device and a window")
	}
	native, err := cfg.Instance.CreateSurface(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("surface: create native surface: %w", err)
	}

	s := &Surface{
		label:   cfg.Label,
		adapter: cfg.Adapter,
		device:  cfg.Device,
		window:  cfg.Window,
		vsync:   cfg.VSync,
		native:  native,
	}
	switch err := s.build(); {
	case errors.Is(err, errZeroArea):
		// Minimized at creation: the first pre-render with a real size
		// builds the swapchain.
		s.pending = true
	case err != nil:
		native.Destroy()
		return nil, err
	}

	event.Subscribe(&s.scope, cfg.Window.Resized(), func(gpu.Extent) { s.MarkPending() })
	if cfg.PreRender != nil {
		cfg.PreRender.Attach(&s.scope, s.preRender)
	}

	slogger().Info("surface: configured", "label", s.label,
		"format", s.config.Format, "present_mode", s.config.PresentMode,
		"width", s.config.Extent.Width, "height", s.config.Extent.Height,
		"images", len(s.images))
	return s, nil
}

// build creates a swapchain from the current capabilities, chained to the
// existing one if any. It returns errZeroArea for a minimized window.
func (s *Surface) build() error {
	w, h := s.window.Size()
	if w <= 0 || h <= 0 {
		return errZeroArea
	}
	caps, err := s.native.Capabilities(s.adapter)
	if err != nil {
		return fmt.Errorf("surface: query capabilities: %w", err)
	}
	cfg := gpu.SwapchainConfig{
		Format:      ChooseFormat(caps.Formats),
		PresentMode: ChoosePresentMode(caps.PresentModes, s.vsync),
		Extent:      ChooseExtent(caps, w, h),
		ImageCount:  ChooseImageCount(caps),
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		return errors.New("surface: no supported format")
	}

	old := s.swapchain
	sc, err := s.native.CreateSwapchain(s.device, cfg, old)
	if err != nil {
		return fmt.Errorf("surface: create swapchain: %w", err)
	}
	if old != nil {
		old.Destroy()
	}
	s.swapchain = sc
	s.config = sc.Config()
	s.images = sc.Images()
	return nil
}

var errZeroArea = errors.New("surface: window has zero area")

// Label returns the surface's label.
func (s *Surface) Label() string { return s.label }

// Alive implements render.ImageSupplier.
func (s *Surface) Alive() bool { return !s.closed }

// Device implements render.ImageSupplier.
func (s *Surface) Device() gpu.Device { return s.device }

// Images implements render.ImageSupplier.
func (s *Surface) Images() []gpu.Image { return s.images }

// Format implements render.ImageSupplier.
func (s *Surface) Format() gputypes.TextureFormat { return s.config.Format }

// Extent implements render.ImageSupplier.
func (s *Surface) Extent() gpu.Extent { return s.config.Extent }

// Config returns the active swapchain configuration.
func (s *Surface) Config() gpu.SwapchainConfig { return s.config }

// ImagesChanged implements render.ImageSupplier. It fires after every
// swapchain recreation.
func (s *Surface) ImagesChanged() *event.Signal[[]gpu.Image] { return &s.changed }

// Pending reports whether the swapchain will be recreated at the next
// pre-render stage.
func (s *Surface) Pending() bool { return s.pending }

// Recreations returns the number of swapchain recreations so far.
func (s *Surface) Recreations() int { return s.recreations }

// MarkPending schedules a swapchain recreation for the next pre-render stage.
func (s *Surface) MarkPending() {
	if !s.pending {
		slogger().Debug("surface: recreation pending", "label", s.label)
	}
	s.pending = true
}

// NextImage implements render.ImageSupplier. It never recreates the
// swapchain: an out-of-date swapchain marks the surface pending and the
// frame fails with render.ErrImageNotAvailable.
func (s *Surface) NextImage(signal gpu.Semaphore) (render.Acquired, error) {
	if s.closed || s.swapchain == nil {
		return render.Acquired{}, fmt.Errorf("surface %s: %w", s.label, render.ErrImageNotAvailable)
	}
	acq, err := s.swapchain.Acquire(signal)
	switch {
	case errors.Is(err, gpu.ErrOutOfDate):
		s.MarkPending()
		return render.Acquired{}, fmt.Errorf("surface %s: %w: %w", s.label, render.ErrImageNotAvailable, err)
	case err != nil:
		return render.Acquired{}, fmt.Errorf("surface %s: acquire: %w", s.label, err)
	}
	if acq.Suboptimal {
		s.MarkPending()
	}
	if int(acq.Index) >= len(s.images) {
		return render.Acquired{}, fmt.Errorf("surface %s: acquired index %d of %d images", s.label, acq.Index, len(s.images))
	}
	return render.Acquired{
		Image:         s.images[acq.Index],
		Index:         acq.Index,
		WaitSemaphore: acq.WaitSemaphore,
	}, nil
}

// ReturnImage implements render.ImageSupplier by presenting the image once
// wait is signaled.
func (s *Surface) ReturnImage(index uint32, wait gpu.Semaphore) error {
	if s.closed || s.swapchain == nil {
		return nil
	}
	suboptimal, err := s.swapchain.Present(index, wait)
	switch {
	case errors.Is(err, gpu.ErrOutOfDate):
		s.MarkPending()
		return nil
	case err != nil:
		return fmt.Errorf("surface %s: present: %w", s.label, err)
	}
	if suboptimal {
		s.MarkPending()
	}
	return nil
}

func (s *Surface) preRender() {
	if !s.pending {
		return
	}
	if err := s.Recreate(); err != nil {
		slogger().Warn("surface: recreation failed", "label", s.label, "err", err)
	}
}

// Recreate rebuilds the swapchain now and fires ImagesChanged. It waits for
// the device to go idle first so no in-flight frame references the old
// images. A zero-area window leaves the surface pending without error.
//
// Recreate must only run between frames; the pre-render stage calls it.
func (s *Surface) Recreate() error {
	if s.closed {
		return nil
	}
	if w, h := s.window.Size(); w <= 0 || h <= 0 {
		s.pending = true
		return nil
	}
	if err := s.device.WaitIdle(); err != nil {
		return fmt.Errorf("surface: wait idle: %w", err)
	}
	if err := s.build(); err != nil {
		if errors.Is(err, errZeroArea) {
			return nil
		}
		return err
	}
	s.pending = false
	s.recreations++
	slogger().Debug("surface: swapchain recreated", "label", s.label,
		"width", s.config.Extent.Width, "height", s.config.Extent.Height,
		"images", len(s.images))
	s.changed.Fire(s.images)
	return nil
}

// Close drops the surface's subscriptions, waits for the device and
// destroys the swapchain and the native surface. Renderers still holding
// the surface fail their frames with render.ErrImageNotAvailable.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.scope.Close()

	err := s.device.WaitIdle()
	if s.swapchain != nil {
		s.swapchain.Destroy()
		s.swapchain = nil
	}
	s.images = nil
	s.native.Destroy()
	if err != nil {
		return fmt.Errorf("surface: wait idle: %w", err)
	}
	return nil
}

// Release implements owner.Resource.
func (s *Surface) Release() error { return s.Close() }
