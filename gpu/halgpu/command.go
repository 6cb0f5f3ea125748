// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vke/gpu"
)

type commandPool struct {
	buffers []*commandBuffer
}

func (p *commandPool) Len() int                     { return len(p.buffers) }
func (p *commandPool) Buffer(i int) gpu.CommandBuffer { return p.buffers[i] }

// commandBuffer records into a hal command encoder. Recording errors that
// the gpu.CommandBuffer interface cannot report are kept and returned by
// End.
type commandBuffer struct {
	dev   *Device
	enc   hal.CommandEncoder
	label string

	recording  bool
	buf        hal.CommandBuffer
	submission uint64
	pass       hal.RenderPassEncoder
	err        error
}

var _ gpu.CommandBuffer = (*commandBuffer)(nil)

// free returns the previous hal command buffer to the device.
func (c *commandBuffer) free() {
	if c.buf != nil {
		c.dev.hal.FreeCommandBuffer(c.buf)
		c.buf = nil
	}
}

func (c *commandBuffer) Reset() error {
	if c.recording {
		c.enc.DiscardEncoding()
		c.recording = false
	}
	c.free()
	c.pass = nil
	c.err = nil
	return nil
}

func (c *commandBuffer) Begin() error {
	if c.recording {
		return errors.New("halgpu: begin while recording")
	}
	c.free()
	if err := c.enc.BeginEncoding(c.label); err != nil {
		return fmt.Errorf("halgpu: begin encoding: %w", err)
	}
	c.recording = true
	return nil
}

func (c *commandBuffer) End() error {
	if !c.recording {
		return errors.New("halgpu: end without begin")
	}
	if c.pass != nil {
		c.pass.End()
		c.pass = nil
		c.fail(errors.New("halgpu: command buffer ended inside a rendering scope"))
	}
	if c.err != nil {
		c.enc.DiscardEncoding()
		c.recording = false
		return c.err
	}
	buf, err := c.enc.EndEncoding()
	c.recording = false
	if err != nil {
		return fmt.Errorf("halgpu: end encoding: %w", err)
	}
	c.buf = buf
	return nil
}

func (c *commandBuffer) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func usageOf(l gpu.ImageLayout) gputypes.TextureUsage {
	switch l {
	case gpu.LayoutColorAttachment:
		return gputypes.TextureUsageRenderAttachment
	default:
		return gputypes.TextureUsageNone
	}
}

// TransitionImage records a texture barrier. hal transitions surface
// textures to the present state itself, so a transition to LayoutPresent
// is recorded as leaving the render attachment state.
func (c *commandBuffer) TransitionImage(img gpu.Image, from, to gpu.ImageLayout) {
	im, ok := img.(*image)
	if !ok || im.tex == nil {
		c.fail(fmt.Errorf("halgpu: transition of an image with no acquired texture"))
		return
	}
	oldUsage, newUsage := usageOf(from), usageOf(to)
	if oldUsage == newUsage {
		return
	}
	c.enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: im.tex,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll},
		Usage: hal.TextureUsageTransition{
			OldUsage: oldUsage,
			NewUsage: newUsage,
		},
	}})
}

func (c *commandBuffer) BeginRendering(info gpu.RenderingInfo) {
	if c.pass != nil {
		c.fail(errors.New("halgpu: nested rendering scope"))
		return
	}
	v, ok := info.View.(*imageView)
	if !ok {
		c.fail(fmt.Errorf("halgpu: view of foreign type %T", info.View))
		return
	}
	hv, err := v.resolve()
	if err != nil {
		c.fail(err)
		return
	}
	load := gputypes.LoadOpClear
	if info.Load {
		load = gputypes.LoadOpLoad
	}
	c.pass = c.enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: c.label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       hv,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: info.ClearColor,
		}},
	})
}

func (c *commandBuffer) EndRendering() {
	if c.pass == nil {
		c.fail(errors.New("halgpu: end rendering without begin"))
		return
	}
	c.pass.End()
	c.pass = nil
}

func (c *commandBuffer) SetViewport(v gpu.Viewport) {
	if c.pass != nil {
		c.pass.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
	}
}

func (c *commandBuffer) SetScissor(r gpu.Rect) {
	if c.pass != nil {
		c.pass.SetScissorRect(uint32(max(r.X, 0)), uint32(max(r.Y, 0)), r.Width, r.Height)
	}
}

func (c *commandBuffer) BindPipeline(p gpu.Pipeline) {
	rp, ok := p.(hal.RenderPipeline)
	if !ok || c.pass == nil {
		c.fail(fmt.Errorf("halgpu: bind of %T outside a rendering scope", p))
		return
	}
	c.pass.SetPipeline(rp)
}

func (c *commandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if c.pass == nil {
		c.fail(errors.New("halgpu: draw outside a rendering scope"))
		return
	}
	c.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}
