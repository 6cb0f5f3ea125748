// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu defines the graphics-API collaborator contracts the engine
// drives: instance, adapter, device, queue, synchronization primitives,
// command recording, images and swapchains.
//
// The contracts follow explicit-API semantics. Fences are GPU to CPU
// completion signals the host can block on; semaphores order GPU work
// against image acquisition and presentation and are never observed by
// the host. Backends register themselves with [RegisterBackend]; the
// wgpu/hal backend lives in gpu/halgpu.
//
// Handles such as [Fence] and [Semaphore] are opaque: only the device that
// created them can interpret them.
package gpu

import (
	"github.com/gogpu/gputypes"
)

// Fence is an opaque GPU to CPU completion signal.
type Fence any

// Semaphore is an opaque GPU ordering signal.
type Semaphore any

// Extent is a two-dimensional size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether either dimension is zero.
func (e Extent) IsZero() bool { return e.Width == 0 || e.Height == 0 }

// Rect is an integer rectangle in framebuffer coordinates.
type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// Viewport maps normalized device coordinates to framebuffer coordinates.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// ImageLayout is the usage state an image is transitioned between.
type ImageLayout uint8

const (
	// LayoutUndefined discards previous contents.
	LayoutUndefined ImageLayout = iota
	// LayoutColorAttachment is the state for rendering into the image.
	LayoutColorAttachment
	// LayoutPresent is the state required to present the image.
	LayoutPresent
)

func (l ImageLayout) String() string {
	switch l {
	case LayoutUndefined:
		return "Undefined"
	case LayoutColorAttachment:
		return "ColorAttachment"
	case LayoutPresent:
		return "Present"
	default:
		return "Unknown"
	}
}

// Image is a GPU image, such as one of a swapchain's images.
type Image interface {
	Format() gputypes.TextureFormat
	Extent() Extent
}

// ImageView is a view of an Image usable as a render attachment.
type ImageView interface {
	Image() Image
}

// RenderingInfo describes a dynamic rendering scope with one color attachment.
type RenderingInfo struct {
	View ImageView
	Area Rect

	// Load keeps the previous contents instead of clearing to ClearColor.
	Load       bool
	ClearColor gputypes.Color
}

// CommandBuffer records GPU commands. A buffer is reset, begun, recorded
// and ended once per use.
type CommandBuffer interface {
	Reset() error
	Begin() error
	End() error

	TransitionImage(img Image, from, to ImageLayout)
	BeginRendering(info RenderingInfo)
	EndRendering()
	SetViewport(v Viewport)
	SetScissor(r Rect)
	BindPipeline(p Pipeline)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// CommandPool owns a fixed set of command buffers.
type CommandPool interface {
	Len() int
	Buffer(i int) CommandBuffer
}

// Submission is one queue submission.
type Submission struct {
	Commands CommandBuffer

	// Wait, if non-nil, delays execution until the semaphore is signaled.
	Wait Semaphore
	// Signal, if non-nil, is signaled when execution completes.
	Signal Semaphore
	// Fence, if non-nil, is signaled when execution completes.
	Fence Fence
}

// Queue executes submitted command buffers in order.
type Queue interface {
	Submit(s Submission) error
}

// Device is a logical GPU device.
type Device interface {
	Queue() Queue

	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(s Semaphore)

	// CreateFence creates a fence, optionally already signaled.
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(f Fence)
	// WaitFence blocks until f is signaled. There is no timeout.
	WaitFence(f Fence) error
	ResetFence(f Fence) error

	CreateCommandPool(buffers int) (CommandPool, error)
	DestroyCommandPool(p CommandPool)

	CreateImageView(img Image) (ImageView, error)
	DestroyImageView(v ImageView)

	CreateShaderModule(desc ShaderModuleDescriptor) (ShaderModule, error)
	DestroyShaderModule(m ShaderModule)
	CreatePipelineLayout(desc PipelineLayoutDescriptor) (PipelineLayout, error)
	DestroyPipelineLayout(l PipelineLayout)
	CreateGraphicsPipeline(desc GraphicsPipelineDescriptor) (Pipeline, error)
	DestroyGraphicsPipeline(p Pipeline)

	// WaitIdle blocks until all submitted work has completed.
	WaitIdle() error
	Destroy()
}

// AdapterInfo describes a physical device.
type AdapterInfo = gputypes.AdapterInfo

// Adapter is a physical device that can open a Device.
type Adapter interface {
	Info() AdapterInfo
	Open() (Device, error)
	Destroy()
}

// NativeWindow exposes the handles needed to create a presentation surface.
type NativeWindow interface {
	NativeHandles() (display, window uintptr)
}

// InstanceDescriptor configures instance creation.
type InstanceDescriptor struct {
	AppName    string
	AppVersion uint32
	Debug      bool
}

// Instance is the entry point to a graphics API.
type Instance interface {
	Adapters() ([]Adapter, error)
	CreateSurface(w NativeWindow) (NativeSurface, error)
	Destroy()
}

// Backend creates instances of one graphics API.
type Backend interface {
	Name() string
	CreateInstance(desc InstanceDescriptor) (Instance, error)
}
