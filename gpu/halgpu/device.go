// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vke/gpu"
)

// pollInterval is the sleep between queue polls while waiting on a fence.
const pollInterval = 100 * time.Microsecond

// fence tracks the submission that will signal it.
type fence struct {
	submission uint64
	signaled   bool
}

// semaphore is an ordering token; hal orders work on its queue.
type semaphore struct{}

// Device adapts a hal device and its queue to gpu.Device.
type Device struct {
	hal   hal.Device
	queue hal.Queue

	// submitted is the index of the most recent submission.
	submitted uint64
}

var _ gpu.Device = (*Device)(nil)

func newDevice(d hal.Device, q hal.Queue) *Device {
	return &Device{hal: d, queue: q}
}

// Queue implements gpu.Device.
func (d *Device) Queue() gpu.Queue { return (*queue)(d) }

// CreateSemaphore implements gpu.Device.
func (d *Device) CreateSemaphore() (gpu.Semaphore, error) { return &semaphore{}, nil }

// DestroySemaphore implements gpu.Device.
func (d *Device) DestroySemaphore(gpu.Semaphore) {}

// CreateFence implements gpu.Device.
func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	return &fence{signaled: signaled}, nil
}

// DestroyFence implements gpu.Device.
func (d *Device) DestroyFence(gpu.Fence) {}

// WaitFence implements gpu.Device by polling the queue until the fence's
// submission has completed.
func (d *Device) WaitFence(f gpu.Fence) error {
	ff := f.(*fence)
	if ff.signaled {
		return nil
	}
	if ff.submission == 0 {
		return gpu.ErrFenceNotSubmitted
	}
	for d.queue.PollCompleted() < ff.submission {
		time.Sleep(pollInterval)
	}
	ff.signaled = true
	return nil
}

// ResetFence implements gpu.Device.
func (d *Device) ResetFence(f gpu.Fence) error {
	ff := f.(*fence)
	ff.signaled = false
	ff.submission = 0
	return nil
}

// CreateCommandPool implements gpu.Device.
func (d *Device) CreateCommandPool(n int) (gpu.CommandPool, error) {
	p := &commandPool{buffers: make([]*commandBuffer, 0, n)}
	for i := 0; i < n; i++ {
		label := fmt.Sprintf("vke_frame_%d", i)
		enc, err := d.hal.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
		if err != nil {
			d.DestroyCommandPool(p)
			return nil, fmt.Errorf("halgpu: create command encoder: %w", err)
		}
		p.buffers = append(p.buffers, &commandBuffer{dev: d, enc: enc, label: label})
	}
	return p, nil
}

// DestroyCommandPool implements gpu.Device.
func (d *Device) DestroyCommandPool(p gpu.CommandPool) {
	for _, cb := range p.(*commandPool).buffers {
		cb.free()
		cb.enc.Destroy()
	}
}

// CreateImageView implements gpu.Device. The hal view is created lazily
// when rendering starts, once the image is bound to an acquired texture.
func (d *Device) CreateImageView(img gpu.Image) (gpu.ImageView, error) {
	im, ok := img.(*image)
	if !ok {
		return nil, fmt.Errorf("halgpu: image of foreign type %T", img)
	}
	return &imageView{dev: d, img: im}, nil
}

// DestroyImageView implements gpu.Device.
func (d *Device) DestroyImageView(v gpu.ImageView) {
	v.(*imageView).release()
}

// CreateShaderModule implements gpu.Device.
func (d *Device) CreateShaderModule(desc gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	m, err := d.hal.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{WGSL: desc.WGSL, SPIRV: desc.SPIRV},
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create shader module %q: %w", desc.Label, err)
	}
	return m, nil
}

// DestroyShaderModule implements gpu.Device.
func (d *Device) DestroyShaderModule(m gpu.ShaderModule) {
	d.hal.DestroyShaderModule(m.(hal.ShaderModule))
}

// CreatePipelineLayout implements gpu.Device.
func (d *Device) CreatePipelineLayout(desc gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	l, err := d.hal.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{Label: desc.Label})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create pipeline layout %q: %w", desc.Label, err)
	}
	return l, nil
}

// DestroyPipelineLayout implements gpu.Device.
func (d *Device) DestroyPipelineLayout(l gpu.PipelineLayout) {
	d.hal.DestroyPipelineLayout(l.(hal.PipelineLayout))
}

// CreateGraphicsPipeline implements gpu.Device.
func (d *Device) CreateGraphicsPipeline(desc gpu.GraphicsPipelineDescriptor) (gpu.Pipeline, error) {
	layout, ok := desc.Layout.(hal.PipelineLayout)
	if !ok {
		return nil, fmt.Errorf("halgpu: pipeline %q: layout of foreign type %T", desc.Label, desc.Layout)
	}
	vs, ok := desc.Vertex.Module.(hal.ShaderModule)
	if !ok {
		return nil, fmt.Errorf("halgpu: pipeline %q: vertex module of foreign type %T", desc.Label, desc.Vertex.Module)
	}
	fs, ok := desc.Fragment.Module.(hal.ShaderModule)
	if !ok {
		return nil, fmt.Errorf("halgpu: pipeline %q: fragment module of foreign type %T", desc.Label, desc.Fragment.Module)
	}
	p, err := d.hal.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:       desc.Label,
		Layout:      layout,
		Vertex:      hal.VertexState{Module: vs, EntryPoint: desc.Vertex.EntryPoint},
		Primitive:   desc.Primitive,
		Multisample: desc.Multisample,
		Fragment: &hal.FragmentState{
			Module:     fs,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    desc.ColorFormat,
				Blend:     desc.Blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("halgpu: create render pipeline %q: %w", desc.Label, err)
	}
	return p, nil
}

// DestroyGraphicsPipeline implements gpu.Device.
func (d *Device) DestroyGraphicsPipeline(p gpu.Pipeline) {
	d.hal.DestroyRenderPipeline(p.(hal.RenderPipeline))
}

// WaitIdle implements gpu.Device.
func (d *Device) WaitIdle() error {
	if err := d.hal.WaitIdle(); err != nil {
		return fmt.Errorf("halgpu: wait idle: %w", mapError(err))
	}
	return nil
}

// Destroy implements gpu.Device.
func (d *Device) Destroy() {
	d.hal.Destroy()
	slogger().Debug("halgpu: device destroyed", "submissions", d.submitted)
}

type queue Device

func (q *queue) Submit(s gpu.Submission) error {
	d := (*Device)(q)
	cb, ok := s.Commands.(*commandBuffer)
	if !ok {
		return fmt.Errorf("halgpu: command buffer of foreign type %T", s.Commands)
	}
	if cb.buf == nil {
		return errors.New("halgpu: submit of a command buffer that is not ended")
	}
	idx, err := d.queue.Submit([]hal.CommandBuffer{cb.buf})
	if err != nil {
		return fmt.Errorf("halgpu: submit: %w", mapError(err))
	}
	d.submitted = idx
	cb.submission = idx
	if s.Fence != nil {
		f := s.Fence.(*fence)
		f.submission = idx
		f.signaled = false
	}
	return nil
}

// mapError translates hal errors to their gpu equivalents.
func mapError(err error) error {
	switch {
	case errors.Is(err, hal.ErrSurfaceOutdated):
		return fmt.Errorf("%w: %w", gpu.ErrOutOfDate, err)
	case errors.Is(err, hal.ErrSurfaceLost):
		return fmt.Errorf("%w: %w", gpu.ErrSurfaceLost, err)
	default:
		return err
	}
}
