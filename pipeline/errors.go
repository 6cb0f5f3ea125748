// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrReleased is returned when a pipeline is built from a released
	// layout or shader.
	ErrReleased = errors.New("pipeline: dependency already released")

	// ErrMissingEntryPoint is returned when a shader stage names an entry
	// point the module does not declare for that stage.
	ErrMissingEntryPoint = errors.New("pipeline: missing entry point")
)

// CompileError reports a failed WGSL compilation.
type CompileError struct {
	// Phase is "parse", "lower", "validate" or "spirv".
	Phase string
	Err   error
	// More counts further validation errors not reported in Err.
	More int
}

func (e *CompileError) Error() string {
	if e.More > 0 {
		return fmt.Sprintf("pipeline: %s: %v (and %d more)", e.Phase, e.Err, e.More)
	}
	return fmt.Sprintf("pipeline: %s: %v", e.Phase, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }
