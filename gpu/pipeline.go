// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import "github.com/gogpu/gputypes"

// ShaderModule is a compiled shader.
type ShaderModule any

// PipelineLayout describes the resources a pipeline binds.
type PipelineLayout any

// Pipeline is a compiled graphics pipeline.
type Pipeline any

// ShaderModuleDescriptor holds a shader in both source and binary form.
// Backends use whichever representation they consume.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
	SPIRV []uint32
}

// PipelineLayoutDescriptor describes a pipeline layout.
type PipelineLayoutDescriptor struct {
	Label string
}

// ShaderStage is a programmable stage bound to a module entry point.
type ShaderStage struct {
	Module     ShaderModule
	EntryPoint string
}

// GraphicsPipelineDescriptor describes a graphics pipeline rendering into a
// single color attachment with dynamic viewport and scissor.
type GraphicsPipelineDescriptor struct {
	Label       string
	Layout      PipelineLayout
	Vertex      ShaderStage
	Fragment    ShaderStage
	ColorFormat gputypes.TextureFormat
	Primitive   gputypes.PrimitiveState
	Multisample gputypes.MultisampleState
	Blend       *gputypes.BlendState
}
