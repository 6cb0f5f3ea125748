// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pipeline provides shader modules, pipeline layouts and graphics
// pipelines as owned GPU resources.
//
// Shaders are written in WGSL and compiled to SPIR-V with naga. Both forms
// are handed to the device, which consumes whichever it supports.
//
// A pipeline depends on its layout and shader modules and must be destroyed
// before them. Attach places a pipeline and its dependencies in an
// ownership tree so that destroying the tree honors that order.
package pipeline

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/vke/gpu"
)

//go:embed shaders/triangle.wgsl
var triangleShaderSource string

// TriangleSource returns the WGSL source of the built-in triangle shader,
// with entry points vs_main and fs_main.
func TriangleSource() string { return triangleShaderSource }

// Stage is a shader stage.
type Stage uint8

// Shader stages.
const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
	stageOther
)

// String returns the WGSL attribute name of the stage.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "other"
	}
}

func stageOf(s ir.ShaderStage) Stage {
	switch s {
	case ir.StageVertex:
		return StageVertex
	case ir.StageFragment:
		return StageFragment
	case ir.StageCompute:
		return StageCompute
	default:
		return stageOther
	}
}

// EntryPoint is an entry point declared by a shader module.
type EntryPoint struct {
	Name  string
	Stage Stage
}

// Compiled is the result of compiling WGSL.
type Compiled struct {
	SPIRV       []uint32
	EntryPoints []EntryPoint
}

// Compile parses, validates and compiles WGSL source to SPIR-V.
func Compile(source string) (*Compiled, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, &CompileError{Phase: "parse", Err: err}
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, &CompileError{Phase: "lower", Err: err}
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, &CompileError{Phase: "validate", Err: err}
	}
	if len(verrs) > 0 {
		return nil, &CompileError{Phase: "validate", Err: &verrs[0], More: len(verrs) - 1}
	}
	code, err := naga.GenerateSPIRV(module, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, &CompileError{Phase: "spirv", Err: err}
	}

	c := &Compiled{SPIRV: spirvWords(code)}
	for _, ep := range module.EntryPoints {
		c.EntryPoints = append(c.EntryPoints, EntryPoint{Name: ep.Name, Stage: stageOf(ep.Stage)})
	}
	return c, nil
}

// spirvWords converts little-endian SPIR-V bytes to 32-bit words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}

// Shader is a shader module on a device.
type Shader struct {
	device      gpu.Device
	handle      gpu.ShaderModule
	label       string
	entryPoints []EntryPoint
	spirv       []uint32
	released    bool
}

// NewShader compiles source and creates a shader module on dev.
func NewShader(dev gpu.Device, label, source string) (*Shader, error) {
	c, err := Compile(source)
	if err != nil {
		return nil, fmt.Errorf("pipeline: shader %q: %w", label, err)
	}
	h, err := dev.CreateShaderModule(gpu.ShaderModuleDescriptor{
		Label: label,
		WGSL:  source,
		SPIRV: c.SPIRV,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: create shader module %q: %w", label, err)
	}
	return &Shader{
		device:      dev,
		handle:      h,
		label:       label,
		entryPoints: c.EntryPoints,
		spirv:       c.SPIRV,
	}, nil
}

// Label returns the shader's label.
func (s *Shader) Label() string { return s.label }

// Handle returns the device shader module.
func (s *Shader) Handle() gpu.ShaderModule { return s.handle }

// EntryPoints returns the entry points declared by the module.
func (s *Shader) EntryPoints() []EntryPoint { return s.entryPoints }

// SPIRV returns the compiled SPIR-V words.
func (s *Shader) SPIRV() []uint32 { return s.spirv }

// HasEntryPoint reports whether the module declares name for stage.
func (s *Shader) HasEntryPoint(name string, stage Stage) bool {
	for _, ep := range s.entryPoints {
		if ep.Name == name && ep.Stage == stage {
			return true
		}
	}
	return false
}

// Released reports whether Release was called.
func (s *Shader) Released() bool { return s.released }

// Release destroys the shader module. It is safe to call more than once.
func (s *Shader) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.device.DestroyShaderModule(s.handle)
	return nil
}
