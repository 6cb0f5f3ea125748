// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/gpu"
)

// DefaultFramesInFlight is used when Options.FramesInFlight is zero.
const DefaultFramesInFlight = 2

// FrameInfo is passed to the frame recording hooks.
type FrameInfo struct {
	// Slot is the synchronization slot of this frame, in [0, N).
	Slot int
	// Frame counts frames rendered by this renderer, starting at 0.
	Frame uint64

	ImageIndex uint32
	Image      gpu.Image
	Format     gputypes.TextureFormat
	Extent     gpu.Extent

	// Commands is the command buffer being recorded. It is only valid
	// inside RenderFrame.
	Commands gpu.CommandBuffer

	// Elapsed is the time since the renderer was created.
	Elapsed time.Duration
}

// FrameRecorder records the GPU commands of one frame.
type FrameRecorder interface {
	RenderFrame(info FrameInfo) error
}

// EarlyRecorder is implemented by recorders that need to run before
// command recording begins, for example to update per-frame state.
type EarlyRecorder interface {
	RenderFrameEarly(info FrameInfo) error
}

// Options configures a Renderer.
type Options struct {
	// FramesInFlight bounds how many frames may be submitted but not yet
	// complete. Zero means DefaultFramesInFlight.
	FramesInFlight int

	// Label names the renderer in logs.
	Label string

	// Now replaces time.Now, for tests.
	Now func() time.Time
}

type frameSlot struct {
	readReady gpu.Semaphore
	writeDone gpu.Semaphore
	inFlight  gpu.Fence
}

// Renderer renders frames into an ImageSupplier.
//
// The renderer does not own its supplier. If the supplier is released,
// Render fails with ErrImageNotAvailable. The recorder is owned: if it has
// a Release() error method, Close calls it.
type Renderer struct {
	label    string
	supplier ImageSupplier
	device   gpu.Device
	recorder FrameRecorder

	slots   []frameSlot
	pool    gpu.CommandPool
	current int
	frames  uint64

	now   func() time.Time
	start time.Time

	stack  *Stack
	closed bool
}

// New creates a renderer with its frame slots on the supplier's device.
func New(supplier ImageSupplier, recorder FrameRecorder, opts Options) (*Renderer, error) {
	if supplier == nil || recorder == nil {
		panic("render: New requires a supplier and a recorder")
	}
	n := opts.FramesInFlight
	if n == 0 {
		n = DefaultFramesInFlight
	}
	if n < 1 {
		return nil, fmt.Errorf("render: invalid frames in flight %d", n)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	r := &Renderer{
		label:    opts.Label,
		supplier: supplier,
		device:   supplier.Device(),
		recorder: recorder,
		now:      now,
	}
	r.start = now()

	if err := r.createSlots(n); err != nil {
		r.destroySlots()
		return nil, err
	}
	slogger().Debug("render: renderer created", "label", r.label, "frames_in_flight", n)
	return r, nil
}

func (r *Renderer) createSlots(n int) error {
	pool, err := r.device.CreateCommandPool(n)
	if err != nil {
		return fmt.Errorf("render: create command pool: %w", err)
	}
	r.pool = pool

	r.slots = make([]frameSlot, 0, n)
	for i := 0; i < n; i++ {
		var s frameSlot
		if s.readReady, err = r.device.CreateSemaphore(); err != nil {
			return fmt.Errorf("render: create semaphore: %w", err)
		}
		r.slots = append(r.slots, s)
		sp := &r.slots[len(r.slots)-1]
		if sp.writeDone, err = r.device.CreateSemaphore(); err != nil {
			return fmt.Errorf("render: create semaphore: %w", err)
		}
		// Signaled so the first wait on each slot returns immediately.
		if sp.inFlight, err = r.device.CreateFence(true); err != nil {
			return fmt.Errorf("render: create fence: %w", err)
		}
	}
	return nil
}

func (r *Renderer) destroySlots() {
	for _, s := range r.slots {
		if s.inFlight != nil {
			r.device.DestroyFence(s.inFlight)
		}
		if s.writeDone != nil {
			r.device.DestroySemaphore(s.writeDone)
		}
		if s.readReady != nil {
			r.device.DestroySemaphore(s.readReady)
		}
	}
	r.slots = nil
	if r.pool != nil {
		r.device.DestroyCommandPool(r.pool)
		r.pool = nil
	}
}

// Label returns the renderer's label.
func (r *Renderer) Label() string { return r.label }

// FramesInFlight returns N.
func (r *Renderer) FramesInFlight() int { return len(r.slots) }

// Frames returns the number of frames submitted so far.
func (r *Renderer) Frames() uint64 { return r.frames }

// Supplier returns the supplier the renderer draws into.
func (r *Renderer) Supplier() ImageSupplier { return r.supplier }

// Recorder returns the renderer's frame recorder.
func (r *Renderer) Recorder() FrameRecorder { return r.recorder }

// InStack reports whether the renderer is registered in a Stack.
func (r *Renderer) InStack() bool { return r.stack != nil }

// Render advances exactly one frame.
func (r *Renderer) Render() error {
	if r.closed {
		return ErrClosed
	}
	if !r.supplier.Alive() {
		return fmt.Errorf("%w: supplier released", ErrImageNotAvailable)
	}

	i := r.current
	slot := &r.slots[i]

	if err := r.device.WaitFence(slot.inFlight); err != nil {
		return fmt.Errorf("render: wait for slot %d: %w", i, err)
	}

	acq, err := r.supplier.NextImage(slot.readReady)
	if err != nil {
		return err
	}

	// Reset only once an image is in hand: an unsignaled fence with no
	// submission behind it would block the next wait on this slot forever.
	if err := r.device.ResetFence(slot.inFlight); err != nil {
		return fmt.Errorf("render: reset fence of slot %d: %w", i, err)
	}

	cb := r.pool.Buffer(i)
	info := FrameInfo{
		Slot:       i,
		Frame:      r.frames,
		ImageIndex: acq.Index,
		Image:      acq.Image,
		Format:     r.supplier.Format(),
		Extent:     r.supplier.Extent(),
		Commands:   cb,
		Elapsed:    r.now().Sub(r.start),
	}

	if err := r.record(cb, info); err != nil {
		return errors.Join(err, r.rearm(i))
	}

	sub := gpu.Submission{
		Commands: cb,
		Signal:   slot.writeDone,
		Fence:    slot.inFlight,
	}
	if acq.WaitSemaphore {
		sub.Wait = slot.readReady
	}
	if err := r.device.Queue().Submit(sub); err != nil {
		return errors.Join(fmt.Errorf("render: submit: %w", err), r.rearm(i))
	}

	retErr := r.supplier.ReturnImage(acq.Index, slot.writeDone)

	r.current = (r.current + 1) % len(r.slots)
	r.frames++
	return retErr
}

func (r *Renderer) record(cb gpu.CommandBuffer, info FrameInfo) error {
	if early, ok := r.recorder.(EarlyRecorder); ok {
		if err := early.RenderFrameEarly(info); err != nil {
			return fmt.Errorf("render: early frame hook: %w", err)
		}
	}
	if err := cb.Reset(); err != nil {
		return fmt.Errorf("render: reset command buffer: %w", err)
	}
	if err := cb.Begin(); err != nil {
		return fmt.Errorf("render: begin command buffer: %w", err)
	}
	if err := r.recorder.RenderFrame(info); err != nil {
		_ = cb.End()
		return fmt.Errorf("render: record frame: %w", err)
	}
	if err := cb.End(); err != nil {
		return fmt.Errorf("render: end command buffer: %w", err)
	}
	return nil
}

// rearm replaces slot i's fence with a signaled one after a frame failed
// between fence reset and submission.
func (r *Renderer) rearm(i int) error {
	f, err := r.device.CreateFence(true)
	if err != nil {
		return fmt.Errorf("render: recreate fence of slot %d: %w", i, err)
	}
	r.device.DestroyFence(r.slots[i].inFlight)
	r.slots[i].inFlight = f
	return nil
}

// Close removes the renderer from its stack, waits for the device to go
// idle, then releases the recorder, the frame slots and the command pool.
// Calling Close more than once is a no-op.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.stack != nil {
		r.stack.Remove(r)
	}

	var errs []error
	if err := r.device.WaitIdle(); err != nil {
		errs = append(errs, fmt.Errorf("render: wait idle: %w", err))
	}
	if rel, ok := r.recorder.(interface{ Release() error }); ok {
		if err := rel.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	r.destroySlots()
	slogger().Debug("render: renderer closed", "label", r.label, "frames", r.frames)
	return errors.Join(errs...)
}

// Release implements owner.Resource.
func (r *Renderer) Release() error { return r.Close() }
