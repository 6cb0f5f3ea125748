// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/event"
	"github.com/gogpu/vke/gpu"
	"github.com/gogpu/vke/internal/gputest"
)

// testSupplier is an in-memory ImageSupplier over the fake GPU.
type testSupplier struct {
	dev     *gputest.Device
	images  []gpu.Image
	extent  gpu.Extent
	next    uint32
	dead    bool
	waitSem bool

	// unavailable makes the next NextImage calls fail.
	unavailable int

	acquired []uint32
	returned []uint32
	changed  event.Signal[[]gpu.Image]
}

func newTestSupplier(dev *gputest.Device, count int) *testSupplier {
	s := &testSupplier{dev: dev, waitSem: true}
	s.setImages(count, gpu.Extent{Width: 640, Height: 480})
	return s
}

func (s *testSupplier) setImages(count int, extent gpu.Extent) {
	s.extent = extent
	s.images = make([]gpu.Image, count)
	for i := range s.images {
		s.images[i] = gputest.NewImage(fmt.Sprintf("img%d", i), gputypes.TextureFormatBGRA8UnormSrgb, extent)
	}
	s.next = 0
}

func (s *testSupplier) replace(count int, extent gpu.Extent) {
	s.setImages(count, extent)
	s.changed.Fire(s.images)
}

func (s *testSupplier) Alive() bool                    { return !s.dead }
func (s *testSupplier) Device() gpu.Device             { return s.dev }
func (s *testSupplier) Images() []gpu.Image            { return s.images }
func (s *testSupplier) Format() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8UnormSrgb }
func (s *testSupplier) Extent() gpu.Extent             { return s.extent }

func (s *testSupplier) ImagesChanged() *event.Signal[[]gpu.Image] { return &s.changed }

func (s *testSupplier) NextImage(gpu.Semaphore) (Acquired, error) {
	if s.unavailable > 0 {
		s.unavailable--
		return Acquired{}, fmt.Errorf("test supplier: %w", ErrImageNotAvailable)
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	s.acquired = append(s.acquired, idx)
	return Acquired{Image: s.images[idx], Index: idx, WaitSemaphore: s.waitSem}, nil
}

func (s *testSupplier) ReturnImage(index uint32, _ gpu.Semaphore) error {
	s.returned = append(s.returned, index)
	return nil
}

var _ ImageSupplier = (*testSupplier)(nil)
