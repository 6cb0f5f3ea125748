// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/event"
	"github.com/gogpu/vke/gpu"
)

// Acquired describes an image handed out by an ImageSupplier.
type Acquired struct {
	Image gpu.Image
	Index uint32

	// WaitSemaphore reports whether the semaphore passed to NextImage will
	// be signaled. When false, GPU work must not wait on it.
	WaitSemaphore bool
}

// ImageSupplier is a source of a rotating set of GPU images, such as a
// presentation surface.
//
// All images returned by Images share format, extent and count until the
// supplier replaces the whole set, which it announces through ImagesChanged.
type ImageSupplier interface {
	// Alive reports whether the supplier can still be used. Renderers hold
	// suppliers without owning them and check Alive before every frame.
	Alive() bool

	Device() gpu.Device
	Images() []gpu.Image
	Format() gputypes.TextureFormat
	Extent() gpu.Extent

	// NextImage returns the next image to render into. signal is signaled
	// when the image is ready if the returned WaitSemaphore is true.
	// It fails with an error wrapping ErrImageNotAvailable when no image
	// can be provided this frame.
	NextImage(signal gpu.Semaphore) (Acquired, error)

	// ReturnImage gives image index back to the supplier. Consumers of the
	// image must wait on wait before reading it.
	ReturnImage(index uint32, wait gpu.Semaphore) error

	// ImagesChanged fires with the new image set after the set is replaced.
	ImagesChanged() *event.Signal[[]gpu.Image]
}
