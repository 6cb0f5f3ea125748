// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/gpu"
	"github.com/gogpu/vke/owner"
)

// Layout is a pipeline layout.
type Layout struct {
	device   gpu.Device
	handle   gpu.PipelineLayout
	label    string
	released bool
}

// NewLayout creates an empty pipeline layout.
func NewLayout(dev gpu.Device, label string) (*Layout, error) {
	h, err := dev.CreatePipelineLayout(gpu.PipelineLayoutDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("pipeline: create layout %q: %w", label, err)
	}
	return &Layout{device: dev, handle: h, label: label}, nil
}

// Label returns the layout's label.
func (l *Layout) Label() string { return l.label }

// Handle returns the device pipeline layout.
func (l *Layout) Handle() gpu.PipelineLayout { return l.handle }

// Released reports whether Release was called.
func (l *Layout) Released() bool { return l.released }

// Release destroys the layout. It is safe to call more than once.
func (l *Layout) Release() error {
	if l.released {
		return nil
	}
	l.released = true
	l.device.DestroyPipelineLayout(l.handle)
	return nil
}

// ShaderStage binds a shader module entry point to a pipeline stage.
type ShaderStage struct {
	Shader     *Shader
	EntryPoint string
}

// GraphicsDescriptor describes a graphics pipeline.
type GraphicsDescriptor struct {
	Label    string
	Layout   *Layout
	Vertex   ShaderStage
	Fragment ShaderStage

	// ColorFormat is the format of the color attachment.
	ColorFormat gputypes.TextureFormat

	// Primitive defaults to a triangle list.
	Primitive gputypes.PrimitiveState

	// Multisample defaults to gputypes.DefaultMultisampleState when Count
	// is zero.
	Multisample gputypes.MultisampleState

	// Blend is nil for opaque rendering.
	Blend *gputypes.BlendState
}

// Graphics is a graphics pipeline.
type Graphics struct {
	device   gpu.Device
	handle   gpu.Pipeline
	desc     GraphicsDescriptor
	released bool
}

// NewGraphics creates a graphics pipeline. The layout and shaders must
// outlive the pipeline.
func NewGraphics(dev gpu.Device, desc GraphicsDescriptor) (*Graphics, error) {
	if desc.Layout == nil || desc.Vertex.Shader == nil || desc.Fragment.Shader == nil {
		panic("pipeline: NewGraphics requires a layout, a vertex and a fragment shader")
	}
	if desc.Layout.released || desc.Vertex.Shader.released || desc.Fragment.Shader.released {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, ErrReleased)
	}
	if !desc.Vertex.Shader.HasEntryPoint(desc.Vertex.EntryPoint, StageVertex) {
		return nil, fmt.Errorf("pipeline %q: %w: vertex %q in %q", desc.Label, ErrMissingEntryPoint,
			desc.Vertex.EntryPoint, desc.Vertex.Shader.label)
	}
	if !desc.Fragment.Shader.HasEntryPoint(desc.Fragment.EntryPoint, StageFragment) {
		return nil, fmt.Errorf("pipeline %q: %w: fragment %q in %q", desc.Label, ErrMissingEntryPoint,
			desc.Fragment.EntryPoint, desc.Fragment.Shader.label)
	}
	if _, err := gpu.FormatSize(desc.ColorFormat); err != nil {
		return nil, fmt.Errorf("pipeline %q: color target: %w", desc.Label, err)
	}
	if desc.Multisample.Count == 0 {
		desc.Multisample = gputypes.DefaultMultisampleState()
	}

	h, err := dev.CreateGraphicsPipeline(gpu.GraphicsPipelineDescriptor{
		Label:       desc.Label,
		Layout:      desc.Layout.handle,
		Vertex:      gpu.ShaderStage{Module: desc.Vertex.Shader.handle, EntryPoint: desc.Vertex.EntryPoint},
		Fragment:    gpu.ShaderStage{Module: desc.Fragment.Shader.handle, EntryPoint: desc.Fragment.EntryPoint},
		ColorFormat: desc.ColorFormat,
		Primitive:   desc.Primitive,
		Multisample: desc.Multisample,
		Blend:       desc.Blend,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: create graphics pipeline %q: %w", desc.Label, err)
	}
	return &Graphics{device: dev, handle: h, desc: desc}, nil
}

// Label returns the pipeline's label.
func (g *Graphics) Label() string { return g.desc.Label }

// Handle returns the device pipeline.
func (g *Graphics) Handle() gpu.Pipeline { return g.handle }

// Descriptor returns the descriptor the pipeline was created with.
func (g *Graphics) Descriptor() GraphicsDescriptor { return g.desc }

// Bind binds the pipeline on cb.
func (g *Graphics) Bind(cb gpu.CommandBuffer) { cb.BindPipeline(g.handle) }

// Released reports whether Release was called.
func (g *Graphics) Released() bool { return g.released }

// Release destroys the pipeline. It is safe to call more than once.
func (g *Graphics) Release() error {
	if g.released {
		return nil
	}
	g.released = true
	g.device.DestroyGraphicsPipeline(g.handle)
	return nil
}

// Attach places g and its dependencies under parent in tree as a chain
// layout → shaders → pipeline, so destroying parent releases the pipeline
// first, then its shaders, then its layout. It returns the pipeline's node.
//
// The layout and shaders must not already be in tree.
func Attach(tree *owner.Tree, parent owner.Handle, g *Graphics) owner.Handle {
	h := tree.Adopt(parent, g.desc.Layout)
	h = tree.Adopt(h, g.desc.Vertex.Shader)
	if g.desc.Fragment.Shader != g.desc.Vertex.Shader {
		h = tree.Adopt(h, g.desc.Fragment.Shader)
	}
	return tree.Adopt(h, g)
}
