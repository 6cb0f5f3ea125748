// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"

	// The noop backend is always available, for headless runs and tests.
	_ "github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/vke/gpu"
	"github.com/gogpu/vke/gpu/halgpu"
	"github.com/gogpu/vke/owner"
	"github.com/gogpu/vke/render"
	"github.com/gogpu/vke/surface"
	"github.com/gogpu/vke/window"
)

// Engine is the engine context: it owns the GPU instance, adapter and
// device, the window manager, the renderer stack and the ownership tree,
// and drives them through its Lifecycle.
//
// An Engine is not safe for concurrent use. Run and every stage
// subscriber execute on the goroutine that called Run.
type Engine struct {
	opts options
	lc   *Lifecycle

	config   AppConfiguration
	backend  gpu.Backend
	instance gpu.Instance
	adapter  gpu.Adapter
	device   gpu.Device
	platform window.Platform
	windows  *window.Manager

	tree  owner.Tree
	stack render.Stack

	frame   uint64
	quit    bool
	ran     bool
	started time.Time
	last    time.Time
}

// New creates an engine. Nothing is brought up until Run.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.config.Device.FramesInFlight < 1 {
		return nil, fmt.Errorf("vke: invalid frames in flight %d", o.config.Device.FramesInFlight)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}

	e := &Engine{opts: o, lc: NewLifecycle()}
	e.subscribe()
	return e, nil
}

// subscribe attaches the engine's own work to its stages.
func (e *Engine) subscribe() {
	lc := e.lc
	lc.LoadAPI.Subscribe(func(*Engine) error {
		halgpu.Register()
		return nil
	})
	lc.QueryAvailability.Subscribe(func(*Engine) error {
		if len(gpu.Backends()) == 0 {
			return gpu.ErrNoBackend
		}
		if len(window.Available()) == 0 {
			return window.ErrNoPlatformAvailable
		}
		return nil
	})
	lc.Configure.Subscribe(func(c *AppConfiguration) error {
		*c = e.opts.config
		return nil
	})
	lc.CreateInstance.Subscribe(func(*Engine) error { return e.createInstance() })
	lc.SelectDevice.Subscribe(func(*Engine) error { return e.selectDevice() })
	lc.WindowManager.Subscribe(func(*Engine) error { return e.createWindowManager() })

	lc.Render.Subscribe(func(f Frame) {
		if err := e.stack.Render(); err != nil {
			slogger().Warn("vke: frame failed", "frame", f.Number, "err", err)
		}
	})
	lc.ShouldClose.Subscribe(func(stop *bool) {
		if e.quit || (e.windows != nil && e.windows.ShouldClose()) {
			*stop = true
		}
	})

	lc.WaitIdle.Subscribe(func(*Engine) error {
		if e.device == nil {
			return nil
		}
		return e.device.WaitIdle()
	})
	lc.CleanupWindowManager.Subscribe(func(*Engine) error {
		var err error
		if e.windows != nil {
			err = e.windows.Close()
			e.windows = nil
		}
		if e.platform != nil {
			e.platform.Destroy()
			e.platform = nil
		}
		return err
	})
	lc.CleanupStack.Subscribe(func(*Engine) error {
		return errors.Join(e.stack.Close(), e.tree.DestroyAll())
	})
	lc.CleanupDevice.Subscribe(func(*Engine) error {
		if e.device != nil {
			e.device.Destroy()
			e.device = nil
		}
		return nil
	})
	lc.CleanupPhysicalDevice.Subscribe(func(*Engine) error {
		if e.adapter != nil {
			e.adapter.Destroy()
			e.adapter = nil
		}
		return nil
	})
	lc.CleanupInstance.Subscribe(func(*Engine) error {
		if e.instance != nil {
			e.instance.Destroy()
			e.instance = nil
		}
		return nil
	})
}

func (e *Engine) createInstance() error {
	b, err := gpu.OpenBackend(e.config.Device.Backend)
	if err != nil {
		return err
	}
	inst, err := b.CreateInstance(gpu.InstanceDescriptor{
		AppName:    e.config.Name,
		AppVersion: e.config.Version.Packed(),
		Debug:      e.config.Device.Debug,
	})
	if err != nil {
		return err
	}
	e.backend, e.instance = b, inst
	return nil
}

func (e *Engine) selectDevice() error {
	adapters, err := e.instance.Adapters()
	if err != nil {
		return err
	}
	best := SelectAdapter(adapters, e.config.Device.PowerPreference)
	if best < 0 {
		return gpu.ErrNoAdapter
	}
	for i, a := range adapters {
		if i != best {
			a.Destroy()
		}
	}
	e.adapter = adapters[best]
	dev, err := e.adapter.Open()
	if err != nil {
		return err
	}
	e.device = dev
	info := e.adapter.Info()
	slogger().Info("vke: adapter selected", "backend", e.backend.Name(), "name", info.Name, "type", info.DeviceType)
	return nil
}

func (e *Engine) createWindowManager() error {
	p, err := window.Open(e.opts.platform)
	if err != nil {
		return err
	}
	e.platform = p
	e.windows = window.NewManager(window.ManagerConfig{
		Platform: p,
		Surfaces: e.newSurface,
		Tree:     &e.tree,
		OSPoll:   e.lc.OSPoll,
		Quit:     e.Quit,
	})
	return nil
}

func (e *Engine) newSurface(w window.Window) (*surface.Surface, error) {
	return surface.New(surface.Config{
		Instance:  e.instance,
		Adapter:   e.adapter,
		Device:    e.device,
		Window:    w,
		PreRender: e.lc.PreRender,
		VSync:     e.config.Device.VSync,
		Label:     w.Title(),
	})
}

// SelectAdapter returns the index of the adapter that best matches pref,
// or -1 if adapters is empty. Discrete GPUs are preferred unless pref is
// PowerPreferenceLowPower, which prefers integrated ones.
func SelectAdapter(adapters []gpu.Adapter, pref gputypes.PowerPreference) int {
	rank := func(t gputypes.DeviceType) int {
		switch t {
		case gputypes.DeviceTypeDiscreteGPU:
			if pref == gputypes.PowerPreferenceLowPower {
				return 3
			}
			return 4
		case gputypes.DeviceTypeIntegratedGPU:
			if pref == gputypes.PowerPreferenceLowPower {
				return 4
			}
			return 3
		case gputypes.DeviceTypeVirtualGPU:
			return 2
		case gputypes.DeviceTypeCPU:
			return 1
		default:
			return 0
		}
	}
	best, bestRank := -1, -1
	for i, a := range adapters {
		if r := rank(a.Info().DeviceType); r > bestRank {
			best, bestRank = i, r
		}
	}
	return best
}

// Lifecycle returns the engine's stages. Subscribe before calling Run.
func (e *Engine) Lifecycle() *Lifecycle { return e.lc }

// Config returns the configuration collected during Configure.
func (e *Engine) Config() AppConfiguration { return e.config }

// Instance returns the GPU instance, or nil before CreateInstance.
func (e *Engine) Instance() gpu.Instance { return e.instance }

// Adapter returns the selected adapter, or nil before SelectDevice.
func (e *Engine) Adapter() gpu.Adapter { return e.adapter }

// Device returns the device, or nil before SelectDevice.
func (e *Engine) Device() gpu.Device { return e.device }

// Windows returns the window manager, or nil before WindowManager.
func (e *Engine) Windows() *window.Manager { return e.windows }

// Stack returns the renderer stack.
func (e *Engine) Stack() *render.Stack { return &e.stack }

// Tree returns the ownership tree.
func (e *Engine) Tree() *owner.Tree { return &e.tree }

// Frame returns the number of completed loop iterations. During
// ShouldClose it counts the iteration that just ended.
func (e *Engine) Frame() uint64 { return e.frame }

// Quit asks the loop to exit after the current iteration.
func (e *Engine) Quit() { e.quit = true }

// PushRenderer appends r to the engine's renderer stack.
func (e *Engine) PushRenderer(r *render.Renderer) { e.stack.Push(r) }

// RemoveRenderer removes r from the stack and reports whether it was there.
func (e *Engine) RemoveRenderer(r *render.Renderer) bool { return e.stack.Remove(r) }

// Own transfers ownership of child to parent in the engine's tree.
func (e *Engine) Own(parent, child owner.Handle) { e.tree.Own(parent, child) }

// CreateWindow opens a window with a presentation surface.
func (e *Engine) CreateWindow(opts window.Options) (*window.Entry, error) {
	if e.windows == nil {
		return nil, ErrNotStarted
	}
	return e.windows.Create(opts)
}

// NewRenderer creates a renderer drawing rec into the window's surface,
// owned by the surface's node and pushed onto the stack.
func (e *Engine) NewRenderer(w *window.Entry, rec render.FrameRecorder, label string) (*render.Renderer, error) {
	r, err := render.New(w.Surface, rec, render.Options{
		FramesInFlight: e.config.Device.FramesInFlight,
		Label:          label,
	})
	if err != nil {
		return nil, err
	}
	e.tree.Adopt(w.Node, r)
	e.stack.Push(r)
	return r, nil
}

// Run brings the engine up, runs the frame loop until a should-close
// subscriber, Quit or ctx ends it, and tears everything down. Cleanup runs
// even when startup fails; its errors are joined with the startup error.
// Run can be called once.
func (e *Engine) Run(ctx context.Context) (err error) {
	if e.ran {
		return ErrAlreadyRun
	}
	e.ran = true

	defer func() {
		err = errors.Join(err, e.cleanup())
	}()
	if err := e.start(); err != nil {
		return err
	}
	e.loop(ctx)
	return nil
}

func (e *Engine) start() error {
	before, after := e.lc.startStages()
	for _, s := range before {
		if err := s.Fire(e); err != nil {
			return &StageError{Stage: s.Name(), Err: err}
		}
	}
	e.config = AppConfiguration{}
	if err := e.lc.Configure.Fire(&e.config); err != nil {
		return &StageError{Stage: e.lc.Configure.Name(), Err: err}
	}
	if e.config.Device.FramesInFlight < 1 {
		return &StageError{
			Stage: e.lc.Configure.Name(),
			Err:   fmt.Errorf("invalid frames in flight %d", e.config.Device.FramesInFlight),
		}
	}
	for _, s := range after {
		if err := s.Fire(e); err != nil {
			return &StageError{Stage: s.Name(), Err: err}
		}
	}
	slogger().Info("vke: ready", "app", e.config.Name, "version", e.config.Version)
	return nil
}

func (e *Engine) loop(ctx context.Context) {
	e.started = time.Now()
	e.last = e.started
	stages := e.lc.frameStages()
	for !e.shouldClose() {
		if ctx.Err() != nil {
			e.quit = true
		}
		if e.quit {
			return
		}
		now := time.Now()
		f := Frame{Number: e.frame, Delta: now.Sub(e.last), Elapsed: now.Sub(e.started)}
		e.last = now

		for _, s := range stages {
			s.Fire(f)
		}
		e.frame++
	}
	slogger().Debug("vke: loop finished", "frames", e.frame)
}

// shouldClose fires ShouldClose. It runs once before the first iteration
// and after every iteration.
func (e *Engine) shouldClose() bool {
	stop := false
	e.lc.ShouldClose.Fire(&stop)
	return stop
}

// cleanup fires every cleanup stage, continuing past failures.
func (e *Engine) cleanup() error {
	var errs []error
	for _, s := range e.lc.cleanupStages() {
		if err := s.FireAll(e); err != nil {
			slogger().Warn("vke: cleanup step failed", "stage", s.Name(), "err", err)
			errs = append(errs, &StageError{Stage: s.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}
