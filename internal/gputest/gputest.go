// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gputest provides an instrumented in-memory implementation of the
// gpu contracts.
//
// The fake GPU completes submitted work only when the host waits on a fence
// (or calls Device.CompleteAll), which makes frame pacing deterministic.
// Every command buffer remembers the fence of its last submission; beginning
// a buffer whose previous work was never observed complete through that
// fence is recorded as a violation.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/gpu"
)

// Fence is a fake fence.
type Fence struct {
	ID        int
	signaled  bool
	pending   bool
	submitSeq int
	// observedSeq is the last submission seen complete through this fence.
	observedSeq int
}

// Signaled reports whether the fence is signaled.
func (f *Fence) Signaled() bool { return f.signaled }

// Semaphore is a fake semaphore.
type Semaphore struct {
	ID       int
	signaled bool
}

// Image is a fake image.
type Image struct {
	Name   string
	format gputypes.TextureFormat
	extent gpu.Extent
}

// NewImage returns a fake image.
func NewImage(name string, format gputypes.TextureFormat, extent gpu.Extent) *Image {
	return &Image{Name: name, format: format, extent: extent}
}

// Format implements gpu.Image.
func (i *Image) Format() gputypes.TextureFormat { return i.format }

// Extent implements gpu.Image.
func (i *Image) Extent() gpu.Extent { return i.extent }

// ImageView is a fake image view.
type ImageView struct {
	image     gpu.Image
	Destroyed bool
}

// Image implements gpu.ImageView.
func (v *ImageView) Image() gpu.Image { return v.image }

// Submit records one queue submission.
type Submit struct {
	Seq    int
	Buffer *CommandBuffer
	Wait   *Semaphore
	Signal *Semaphore
	Fence  *Fence
}

// Device is a fake gpu.Device. The zero value is not usable; call NewDevice.
type Device struct {
	mu sync.Mutex

	nextID  int
	seq     int
	pending []*Submit

	// Submits lists every submission in order.
	Submits []*Submit
	// Violations lists protocol violations observed so far.
	Violations []string
	// Ops lists device-level calls such as "wait-idle" in order.
	Ops []string

	live map[any]string

	// SubmitErr, if set, is returned by the next Submit.
	SubmitErr error
}

// NewDevice returns an empty fake device.
func NewDevice() *Device {
	return &Device{live: make(map[any]string)}
}

var _ gpu.Device = (*Device)(nil)

func (d *Device) id() int {
	d.nextID++
	return d.nextID
}

func (d *Device) track(obj any, kind string) {
	d.live[obj] = kind
}

func (d *Device) untrack(obj any, kind string) {
	if _, ok := d.live[obj]; !ok {
		d.Violations = append(d.Violations, fmt.Sprintf("destroy of unknown or already destroyed %s", kind))
		return
	}
	delete(d.live, obj)
}

// Live returns the number of live objects of the given kind ("fence",
// "semaphore", "pool", "view", "shader", "layout", "pipeline"), or all
// objects when kind is empty.
func (d *Device) Live(kind string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, k := range d.live {
		if kind == "" || k == kind {
			n++
		}
	}
	return n
}

// Queue implements gpu.Device.
func (d *Device) Queue() gpu.Queue { return (*queue)(d) }

// CreateSemaphore implements gpu.Device.
func (d *Device) CreateSemaphore() (gpu.Semaphore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := &Semaphore{ID: d.id()}
	d.track(s, "semaphore")
	return s, nil
}

// DestroySemaphore implements gpu.Device.
func (d *Device) DestroySemaphore(s gpu.Semaphore) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.untrack(s, "semaphore")
}

// CreateFence implements gpu.Device.
func (d *Device) CreateFence(signaled bool) (gpu.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f := &Fence{ID: d.id(), signaled: signaled}
	d.track(f, "fence")
	return f, nil
}

// DestroyFence implements gpu.Device.
func (d *Device) DestroyFence(f gpu.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ff, ok := f.(*Fence); ok && ff.pending {
		d.Violations = append(d.Violations, fmt.Sprintf("fence %d destroyed while pending", ff.ID))
	}
	d.untrack(f, "fence")
}

// WaitFence completes submitted work in order until f is signaled.
func (d *Device) WaitFence(f gpu.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ff := f.(*Fence)
	for !ff.signaled {
		if !ff.pending {
			return gpu.ErrFenceNotSubmitted
		}
		d.completeOne()
	}
	ff.observedSeq = ff.submitSeq
	return nil
}

// ResetFence implements gpu.Device.
func (d *Device) ResetFence(f gpu.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ff := f.(*Fence)
	if ff.pending {
		d.Violations = append(d.Violations, fmt.Sprintf("fence %d reset while pending", ff.ID))
	}
	ff.signaled = false
	return nil
}

// CompleteAll completes every pending submission.
func (d *Device) CompleteAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.pending) > 0 {
		d.completeOne()
	}
}

// Pending returns the number of submissions the fake GPU has not finished.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Device) completeOne() {
	s := d.pending[0]
	d.pending = d.pending[1:]
	if s.Signal != nil {
		s.Signal.signaled = true
	}
	if s.Fence != nil {
		s.Fence.signaled = true
		s.Fence.pending = false
	}
	s.Buffer.inFlight = false
}

// CreateCommandPool implements gpu.Device.
func (d *Device) CreateCommandPool(n int) (gpu.CommandPool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := &CommandPool{buffers: make([]*CommandBuffer, n)}
	for i := range p.buffers {
		p.buffers[i] = &CommandBuffer{dev: d, Index: i}
	}
	d.track(p, "pool")
	return p, nil
}

// DestroyCommandPool implements gpu.Device.
func (d *Device) DestroyCommandPool(p gpu.CommandPool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range p.(*CommandPool).buffers {
		if b.inFlight {
			d.Violations = append(d.Violations, fmt.Sprintf("command buffer %d destroyed while in flight", b.Index))
		}
	}
	d.untrack(p, "pool")
}

// CreateImageView implements gpu.Device.
func (d *Device) CreateImageView(img gpu.Image) (gpu.ImageView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := &ImageView{image: img}
	d.track(v, "view")
	return v, nil
}

// DestroyImageView implements gpu.Device.
func (d *Device) DestroyImageView(v gpu.ImageView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v.(*ImageView).Destroyed = true
	d.untrack(v, "view")
}

// ShaderModule is a fake shader module.
type ShaderModule struct{ Desc gpu.ShaderModuleDescriptor }

// PipelineLayout is a fake pipeline layout.
type PipelineLayout struct{ Desc gpu.PipelineLayoutDescriptor }

// Pipeline is a fake graphics pipeline.
type Pipeline struct{ Desc gpu.GraphicsPipelineDescriptor }

// CreateShaderModule implements gpu.Device.
func (d *Device) CreateShaderModule(desc gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := &ShaderModule{Desc: desc}
	d.track(m, "shader")
	return m, nil
}

// DestroyShaderModule implements gpu.Device.
func (d *Device) DestroyShaderModule(m gpu.ShaderModule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.untrack(m, "shader")
	d.Ops = append(d.Ops, "destroy-shader:"+m.(*ShaderModule).Desc.Label)
}

// CreatePipelineLayout implements gpu.Device.
func (d *Device) CreatePipelineLayout(desc gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l := &PipelineLayout{Desc: desc}
	d.track(l, "layout")
	return l, nil
}

// DestroyPipelineLayout implements gpu.Device.
func (d *Device) DestroyPipelineLayout(l gpu.PipelineLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.untrack(l, "layout")
	d.Ops = append(d.Ops, "destroy-layout:"+l.(*PipelineLayout).Desc.Label)
}

// CreateGraphicsPipeline implements gpu.Device.
func (d *Device) CreateGraphicsPipeline(desc gpu.GraphicsPipelineDescriptor) (gpu.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, obj := range map[string]any{"layout": desc.Layout, "vertex": desc.Vertex.Module, "fragment": desc.Fragment.Module} {
		if _, ok := d.live[obj]; !ok {
			return nil, fmt.Errorf("gputest: pipeline %q references dead %s", desc.Label, name)
		}
	}
	p := &Pipeline{Desc: desc}
	d.track(p, "pipeline")
	return p, nil
}

// DestroyGraphicsPipeline implements gpu.Device.
func (d *Device) DestroyGraphicsPipeline(p gpu.Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()
	desc := p.(*Pipeline).Desc
	for name, obj := range map[string]any{"layout": desc.Layout, "vertex": desc.Vertex.Module, "fragment": desc.Fragment.Module} {
		if _, ok := d.live[obj]; !ok {
			d.Violations = append(d.Violations, fmt.Sprintf("pipeline %q outlived its %s", desc.Label, name))
		}
	}
	d.untrack(p, "pipeline")
	d.Ops = append(d.Ops, "destroy-pipeline:"+desc.Label)
}

// WaitIdle completes all pending work.
func (d *Device) WaitIdle() error {
	d.CompleteAll()
	d.mu.Lock()
	d.Ops = append(d.Ops, "wait-idle")
	d.mu.Unlock()
	return nil
}

// Destroy implements gpu.Device.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Ops = append(d.Ops, "destroy-device")
}

type queue Device

func (q *queue) Submit(s gpu.Submission) error {
	d := (*Device)(q)
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.SubmitErr; err != nil {
		d.SubmitErr = nil
		return err
	}
	cb, ok := s.Commands.(*CommandBuffer)
	if !ok || cb.state != stateEnded {
		return errors.New("gputest: submit of a command buffer that is not ended")
	}
	d.seq++
	sub := &Submit{Seq: d.seq, Buffer: cb}
	if s.Wait != nil {
		sub.Wait = s.Wait.(*Semaphore)
	}
	if s.Signal != nil {
		sub.Signal = s.Signal.(*Semaphore)
	}
	if s.Fence != nil {
		f := s.Fence.(*Fence)
		if f.signaled || f.pending {
			d.Violations = append(d.Violations, fmt.Sprintf("fence %d submitted while not reset", f.ID))
		}
		f.pending = true
		f.submitSeq = d.seq
		sub.Fence = f
	}
	cb.inFlight = true
	cb.lastFence = sub.Fence
	cb.lastSeq = d.seq
	cb.state = stateSubmitted
	d.Submits = append(d.Submits, sub)
	d.pending = append(d.pending, sub)
	return nil
}
