// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

var (
	// ErrOutOfDate is returned by swapchain operations when the swapchain
	// no longer matches its surface and must be recreated.
	ErrOutOfDate = errors.New("gpu: swapchain out of date")

	// ErrSurfaceLost is returned when the native surface is gone.
	ErrSurfaceLost = errors.New("gpu: surface lost")

	// ErrNoAdapter is returned when an instance exposes no usable adapter.
	ErrNoAdapter = errors.New("gpu: no suitable adapter")

	// ErrNoBackend is returned when no backend is registered.
	ErrNoBackend = errors.New("gpu: no backend registered")

	// ErrFenceNotSubmitted is returned when waiting on an unsignaled fence
	// that no submission will ever signal.
	ErrFenceNotSubmitted = errors.New("gpu: wait on unsignaled fence with no pending submission")
)

// BackendNotFoundError is returned when a backend is requested by name
// but no backend of that name is registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return fmt.Sprintf("gpu: backend %q not registered", e.Name)
}

// UnsupportedFormatError is returned by FormatSize for formats without a
// fixed per-pixel size.
type UnsupportedFormatError struct {
	Format gputypes.TextureFormat
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("gpu: format %v has no fixed texel size: %s", e.Format, e.Reason)
}
