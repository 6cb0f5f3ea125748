// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gputest

import (
	"errors"
	"fmt"

	"github.com/gogpu/vke/gpu"
)

type bufferState uint8

const (
	stateInitial bufferState = iota
	stateRecording
	stateEnded
	stateSubmitted
)

// CommandPool is a fake command pool.
type CommandPool struct {
	buffers []*CommandBuffer
}

// Len implements gpu.CommandPool.
func (p *CommandPool) Len() int { return len(p.buffers) }

// Buffer implements gpu.CommandPool.
func (p *CommandPool) Buffer(i int) gpu.CommandBuffer { return p.buffers[i] }

// CommandBuffer is a fake command buffer that records operations as text.
type CommandBuffer struct {
	dev   *Device
	Index int

	state     bufferState
	inFlight  bool
	lastFence *Fence
	lastSeq   int

	// Ops is the list of commands recorded since the last Begin.
	Ops []string
	// Recordings counts Begin calls.
	Recordings int
}

// Reset implements gpu.CommandBuffer.
func (c *CommandBuffer) Reset() error {
	c.checkReuse("reset")
	c.state = stateInitial
	c.Ops = nil
	return nil
}

// Begin implements gpu.CommandBuffer.
func (c *CommandBuffer) Begin() error {
	if c.state == stateRecording {
		return errors.New("gputest: begin while recording")
	}
	c.checkReuse("begin")
	c.state = stateRecording
	c.Ops = nil
	c.Recordings++
	return nil
}

// checkReuse records a violation when the buffer's previous submission was
// not observed complete through its fence.
func (c *CommandBuffer) checkReuse(op string) {
	d := c.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if c.inFlight {
		d.Violations = append(d.Violations, fmt.Sprintf("%s of command buffer %d while its work is in flight", op, c.Index))
		return
	}
	if c.lastFence != nil && c.lastFence.observedSeq < c.lastSeq {
		d.Violations = append(d.Violations, fmt.Sprintf("%s of command buffer %d before fence %d was observed", op, c.Index, c.lastFence.ID))
	}
}

// End implements gpu.CommandBuffer.
func (c *CommandBuffer) End() error {
	if c.state != stateRecording {
		return errors.New("gputest: end without begin")
	}
	c.state = stateEnded
	return nil
}

func (c *CommandBuffer) record(format string, args ...any) {
	c.Ops = append(c.Ops, fmt.Sprintf(format, args...))
}

// TransitionImage implements gpu.CommandBuffer.
func (c *CommandBuffer) TransitionImage(img gpu.Image, from, to gpu.ImageLayout) {
	name := ""
	if i, ok := img.(*Image); ok {
		name = i.Name
	}
	c.record("transition %s %v->%v", name, from, to)
}

// BeginRendering implements gpu.CommandBuffer.
func (c *CommandBuffer) BeginRendering(info gpu.RenderingInfo) {
	if v, ok := info.View.(*ImageView); ok && v.Destroyed {
		c.dev.mu.Lock()
		c.dev.Violations = append(c.dev.Violations, "rendering into a destroyed image view")
		c.dev.mu.Unlock()
	}
	col := info.ClearColor
	c.record("begin-rendering %.2f,%.2f,%.2f,%.2f", col.R, col.G, col.B, col.A)
}

// EndRendering implements gpu.CommandBuffer.
func (c *CommandBuffer) EndRendering() { c.record("end-rendering") }

// SetViewport implements gpu.CommandBuffer.
func (c *CommandBuffer) SetViewport(v gpu.Viewport) {
	c.record("viewport %gx%g", v.Width, v.Height)
}

// SetScissor implements gpu.CommandBuffer.
func (c *CommandBuffer) SetScissor(r gpu.Rect) {
	c.record("scissor %dx%d", r.Width, r.Height)
}

// BindPipeline implements gpu.CommandBuffer.
func (c *CommandBuffer) BindPipeline(p gpu.Pipeline) {
	label := ""
	if pp, ok := p.(*Pipeline); ok {
		label = pp.Desc.Label
	}
	c.record("bind %s", label)
}

// Draw implements gpu.CommandBuffer.
func (c *CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	c.record("draw %d %d", vertexCount, instanceCount)
}
