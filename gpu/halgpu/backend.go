// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package halgpu implements the gpu contracts on top of the wgpu hardware
// abstraction layer (github.com/gogpu/wgpu/hal).
//
// hal backends register themselves when their package is imported, for
// example:
//
//	import _ "github.com/gogpu/wgpu/hal/noop"
//
// Register then exposes every registered hal backend through
// gpu.RegisterBackend under the names "vulkan", "metal", "dx12", "gl" and
// "noop".
//
// hal has no binary semaphores and signals no fence on submit. Fences are
// therefore tracked by submission index and waited on by polling the
// queue; semaphores are plain tokens, since hal orders acquisition,
// submission and presentation on the single queue itself.
package halgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vke/gpu"
)

// BackendName returns the gpu registry name of a hal backend variant.
func BackendName(v gputypes.Backend) string {
	switch v {
	case gputypes.BackendVulkan:
		return "vulkan"
	case gputypes.BackendMetal:
		return "metal"
	case gputypes.BackendDX12:
		return "dx12"
	case gputypes.BackendGL:
		return "gl"
	case gputypes.BackendEmpty:
		return "noop"
	default:
		return fmt.Sprintf("hal-%d", v)
	}
}

// Register registers every hal backend known at call time with the gpu
// backend registry and returns their names.
func Register() []string {
	var names []string
	for _, v := range hal.AvailableBackends() {
		b, ok := hal.GetBackend(v)
		if !ok {
			continue
		}
		name := BackendName(v)
		gpu.RegisterBackend(name, func() gpu.Backend { return NewBackend(b) })
		names = append(names, name)
	}
	slogger().Debug("halgpu: backends registered", "backends", names)
	return names
}

// Backend adapts a hal.Backend to gpu.Backend.
type Backend struct {
	hal  hal.Backend
	name string
}

var _ gpu.Backend = (*Backend)(nil)

// NewBackend wraps b.
func NewBackend(b hal.Backend) *Backend {
	return &Backend{hal: b, name: BackendName(b.Variant())}
}

// Name implements gpu.Backend.
func (b *Backend) Name() string { return b.name }

// CreateInstance implements gpu.Backend.
func (b *Backend) CreateInstance(desc gpu.InstanceDescriptor) (gpu.Instance, error) {
	hd := &hal.InstanceDescriptor{Backends: gputypes.BackendsAll}
	if desc.Debug {
		hd.Flags = gputypes.InstanceFlagsDebug | gputypes.InstanceFlagsValidation
	}
	inst, err := b.hal.CreateInstance(hd)
	if err != nil {
		return nil, fmt.Errorf("halgpu: create %s instance: %w", b.name, err)
	}
	slogger().Info("halgpu: instance created", "backend", b.name, "app", desc.AppName, "debug", desc.Debug)
	return &Instance{hal: inst, backend: b.name}, nil
}

// Instance adapts a hal.Instance to gpu.Instance.
type Instance struct {
	hal     hal.Instance
	backend string
}

var _ gpu.Instance = (*Instance)(nil)

// Adapters implements gpu.Instance.
func (i *Instance) Adapters() ([]gpu.Adapter, error) {
	exposed := i.hal.EnumerateAdapters(nil)
	if len(exposed) == 0 {
		return nil, fmt.Errorf("halgpu: %s: %w", i.backend, gpu.ErrNoAdapter)
	}
	out := make([]gpu.Adapter, len(exposed))
	for n, e := range exposed {
		out[n] = &Adapter{exposed: e}
	}
	return out, nil
}

// CreateSurface implements gpu.Instance.
func (i *Instance) CreateSurface(w gpu.NativeWindow) (gpu.NativeSurface, error) {
	display, window := w.NativeHandles()
	s, err := i.hal.CreateSurface(display, window)
	if err != nil {
		return nil, fmt.Errorf("halgpu: create surface: %w", err)
	}
	return &Surface{hal: s}, nil
}

// Destroy implements gpu.Instance.
func (i *Instance) Destroy() { i.hal.Destroy() }

// Adapter adapts a hal adapter to gpu.Adapter.
type Adapter struct {
	exposed hal.ExposedAdapter
}

var _ gpu.Adapter = (*Adapter)(nil)

// Info implements gpu.Adapter.
func (a *Adapter) Info() gpu.AdapterInfo { return a.exposed.Info }

// Limits returns the adapter's limits.
func (a *Adapter) Limits() gputypes.Limits { return a.exposed.Capabilities.Limits }

// Open implements gpu.Adapter. The device is opened with no optional
// features and the default limits.
func (a *Adapter) Open() (gpu.Device, error) {
	od, err := a.exposed.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("halgpu: open %q: %w", a.exposed.Info.Name, err)
	}
	slogger().Info("halgpu: device opened", "adapter", a.exposed.Info.Name, "type", a.exposed.Info.DeviceType)
	return newDevice(od.Device, od.Queue), nil
}

// Destroy implements gpu.Adapter.
func (a *Adapter) Destroy() { a.exposed.Adapter.Destroy() }
