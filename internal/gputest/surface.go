// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gputest

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/gpu"
)

// AcquireResult scripts one Swapchain.Acquire outcome.
type AcquireResult struct {
	Suboptimal bool
	Err        error
}

// Surface is a fake gpu.NativeSurface.
type Surface struct {
	Caps gpu.SurfaceCapabilities

	// Created lists every swapchain created, oldest first.
	Created []*Swapchain
	// Destroyed reports whether Destroy was called.
	Destroyed bool

	// Acquires scripts upcoming acquisitions across swapchains.
	// When empty, acquisition succeeds.
	Acquires []AcquireResult
	// Presents scripts upcoming presentations the same way.
	Presents []AcquireResult
}

// NewSurface returns a surface reporting a BGRA8 sRGB format, FIFO and
// Mailbox present modes and two to eight images.
func NewSurface() *Surface {
	return &Surface{Caps: gpu.SurfaceCapabilities{
		Formats: []gputypes.TextureFormat{
			gputypes.TextureFormatBGRA8Unorm,
			gputypes.TextureFormatBGRA8UnormSrgb,
		},
		PresentModes:  []gputypes.PresentMode{gputypes.PresentModeFifo, gputypes.PresentModeMailbox},
		MinImageCount: 2,
		MaxImageCount: 8,
		MinExtent:     gpu.Extent{Width: 1, Height: 1},
		MaxExtent:     gpu.Extent{Width: 16384, Height: 16384},
	}}
}

var _ gpu.NativeSurface = (*Surface)(nil)

// Capabilities implements gpu.NativeSurface.
func (s *Surface) Capabilities(gpu.Adapter) (gpu.SurfaceCapabilities, error) {
	return s.Caps, nil
}

// CreateSwapchain implements gpu.NativeSurface.
func (s *Surface) CreateSwapchain(_ gpu.Device, cfg gpu.SwapchainConfig, old gpu.Swapchain) (gpu.Swapchain, error) {
	sc := &Swapchain{surface: s, cfg: cfg, Generation: len(s.Created)}
	if old != nil {
		sc.Old = old.(*Swapchain)
		if sc.Old.Destroyed {
			return nil, fmt.Errorf("gputest: old swapchain %d already destroyed", sc.Old.Generation)
		}
	}
	sc.images = make([]gpu.Image, cfg.ImageCount)
	for i := range sc.images {
		sc.images[i] = NewImage(fmt.Sprintf("sc%d/img%d", sc.Generation, i), cfg.Format, cfg.Extent)
	}
	s.Created = append(s.Created, sc)
	return sc, nil
}

// Destroy implements gpu.NativeSurface.
func (s *Surface) Destroy() { s.Destroyed = true }

// Swapchain is a fake gpu.Swapchain cycling through its images.
type Swapchain struct {
	surface    *Surface
	cfg        gpu.SwapchainConfig
	images     []gpu.Image
	next       uint32
	Generation int
	Old        *Swapchain
	Destroyed  bool

	// Presented lists presented image indices.
	Presented []uint32
}

// Config implements gpu.Swapchain.
func (s *Swapchain) Config() gpu.SwapchainConfig { return s.cfg }

// Images implements gpu.Swapchain.
func (s *Swapchain) Images() []gpu.Image { return s.images }

// Acquire implements gpu.Swapchain.
func (s *Swapchain) Acquire(signal gpu.Semaphore) (gpu.Acquisition, error) {
	var r AcquireResult
	if len(s.surface.Acquires) > 0 {
		r = s.surface.Acquires[0]
		s.surface.Acquires = s.surface.Acquires[1:]
	}
	if r.Err != nil {
		return gpu.Acquisition{}, r.Err
	}
	if sem, ok := signal.(*Semaphore); ok {
		sem.signaled = true
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	return gpu.Acquisition{Index: idx, Suboptimal: r.Suboptimal, WaitSemaphore: true}, nil
}

// Present implements gpu.Swapchain.
func (s *Swapchain) Present(index uint32, _ gpu.Semaphore) (bool, error) {
	var r AcquireResult
	if len(s.surface.Presents) > 0 {
		r = s.surface.Presents[0]
		s.surface.Presents = s.surface.Presents[1:]
	}
	if r.Err != nil {
		return false, r.Err
	}
	s.Presented = append(s.Presented, index)
	return r.Suboptimal, nil
}

// Destroy implements gpu.Swapchain.
func (s *Swapchain) Destroy() { s.Destroyed = true }

// Adapter is a fake gpu.Adapter.
type Adapter struct {
	info      gpu.AdapterInfo
	Device    *Device
	OpenErr   error
	Destroyed bool
}

// NewAdapter returns an adapter that opens dev.
func NewAdapter(name string, typ gputypes.DeviceType, dev *Device) *Adapter {
	return &Adapter{info: gpu.AdapterInfo{Name: name, DeviceType: typ}, Device: dev}
}

// Info implements gpu.Adapter.
func (a *Adapter) Info() gpu.AdapterInfo { return a.info }

// Open implements gpu.Adapter.
func (a *Adapter) Open() (gpu.Device, error) {
	if a.OpenErr != nil {
		return nil, a.OpenErr
	}
	return a.Device, nil
}

// Destroy implements gpu.Adapter.
func (a *Adapter) Destroy() { a.Destroyed = true }

// Instance is a fake gpu.Instance.
type Instance struct {
	AdapterList []*Adapter
	// Surfaces lists surfaces created, in order.
	Surfaces  []*Surface
	Destroyed bool
}

// Adapters implements gpu.Instance.
func (i *Instance) Adapters() ([]gpu.Adapter, error) {
	out := make([]gpu.Adapter, len(i.AdapterList))
	for n, a := range i.AdapterList {
		out[n] = a
	}
	return out, nil
}

// CreateSurface implements gpu.Instance.
func (i *Instance) CreateSurface(gpu.NativeWindow) (gpu.NativeSurface, error) {
	s := NewSurface()
	i.Surfaces = append(i.Surfaces, s)
	return s, nil
}

// Destroy implements gpu.Instance.
func (i *Instance) Destroy() { i.Destroyed = true }

// Backend is a fake gpu.Backend returning one prepared instance.
type Backend struct {
	BackendName string
	Instance    *Instance
	Desc        gpu.InstanceDescriptor
	CreateErr   error
}

// NewBackend returns a backend whose instance exposes one discrete adapter
// backed by a fresh fake device.
func NewBackend(name string) *Backend {
	return &Backend{
		BackendName: name,
		Instance: &Instance{AdapterList: []*Adapter{
			NewAdapter("fake", gputypes.DeviceTypeDiscreteGPU, NewDevice()),
		}},
	}
}

// Name implements gpu.Backend.
func (b *Backend) Name() string { return b.BackendName }

// CreateInstance implements gpu.Backend.
func (b *Backend) CreateInstance(desc gpu.InstanceDescriptor) (gpu.Instance, error) {
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}
	b.Desc = desc
	return b.Instance, nil
}
