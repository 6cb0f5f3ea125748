// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import "github.com/gogpu/gputypes"

// SurfaceCapabilities reports what a native surface supports for a device.
type SurfaceCapabilities struct {
	Formats      []gputypes.TextureFormat
	PresentModes []gputypes.PresentMode

	MinImageCount uint32
	// MaxImageCount of zero means no upper limit.
	MaxImageCount uint32

	// CurrentExtent is the surface size decided by the window system.
	// A zero extent means the swapchain extent decides the surface size.
	CurrentExtent Extent
	MinExtent     Extent
	MaxExtent     Extent
}

// SwapchainConfig describes a swapchain to create.
type SwapchainConfig struct {
	Format      gputypes.TextureFormat
	PresentMode gputypes.PresentMode
	Extent      Extent
	ImageCount  uint32
}

// Acquisition is the result of a successful image acquisition.
type Acquisition struct {
	Index uint32

	// Suboptimal means the image is usable but the swapchain should be
	// recreated at the next opportunity.
	Suboptimal bool

	// WaitSemaphore reports whether the semaphore passed to Acquire will be
	// signaled. When false the image is ready on return and GPU work must
	// not wait on the semaphore.
	WaitSemaphore bool
}

// Swapchain is a rotating set of presentable images.
type Swapchain interface {
	Config() SwapchainConfig
	Images() []Image

	// Acquire returns the next image. It fails with ErrOutOfDate when the
	// swapchain no longer matches the surface.
	Acquire(signal Semaphore) (Acquisition, error)

	// Present queues image index for presentation after wait is signaled.
	// It reports suboptimal presentation and fails with ErrOutOfDate.
	Present(index uint32, wait Semaphore) (suboptimal bool, err error)

	Destroy()
}

// NativeSurface is a window-system presentation target.
type NativeSurface interface {
	Capabilities(a Adapter) (SurfaceCapabilities, error)

	// CreateSwapchain creates a swapchain for dev. old, if non-nil, is the
	// swapchain being replaced; the caller destroys it after the new one
	// is created.
	CreateSwapchain(dev Device, cfg SwapchainConfig, old Swapchain) (Swapchain, error)

	Destroy()
}
