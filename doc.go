// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package vke is a real-time rendering engine shell. It owns the GPU
// device, windows with their presentation surfaces and a per-frame render
// loop, and exposes an ordered lifecycle of stages that application code
// subscribes to.
//
// # Lifecycle
//
// [Engine.Run] fires the startup stages in order:
//
//	Start → LoadAPI → QueryAvailability → Configure → CreateInstance →
//	PostInstance → SelectDevice → PostDevice → WindowManager → Ready
//
// then ShouldClose once, and while no subscriber asks to stop, every loop
// iteration fires
//
//	OSPoll → PreUpdate → Update → PostUpdate → PreRender → Render →
//	PostRender → ShouldClose
//
// and finally Cleanup with its sub-stages
//
//	WaitIdle → CleanupUser → CleanupWindowManager → CleanupStack →
//	CleanupDevice → CleanupPhysicalDevice → CleanupInstance
//
// Closing a window removes it with its surface and renderers; the loop
// ends when the last window is gone or the platform asks to quit.
// A failing startup subscriber aborts startup; cleanup always runs every
// step. The Render stage drives the renderer stack: each renderer renders
// one frame, and a renderer whose surface has no image this frame is
// skipped without affecting the others.
//
// # Quick Start
//
//	e, err := vke.New(vke.WithName("demo"), vke.WithBackend("noop"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	e.Lifecycle().Ready.Subscribe(func(e *vke.Engine) error {
//		w, err := e.CreateWindow(window.Options{Title: "demo", Width: 800, Height: 600})
//		if err != nil {
//			return err
//		}
//		g, err := render.NewGeneric(w.Surface, render.WithClearColor(colornames.Red))
//		if err != nil {
//			return err
//		}
//		_, err = e.NewRenderer(w, g, "red")
//		return err
//	})
//	if err := e.Run(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//
// # Ownership
//
// GPU objects are released through the engine's ownership [owner.Tree].
// Each window node owns its surface node, and renderers created with
// [Engine.NewRenderer] are owned by the surface node, so removing a window
// releases its renderers, then its surface, then the window.
//
// # Backends
//
// The wgpu hal backends are registered at LoadAPI. The noop backend is
// always linked; Vulkan is linked unless the nogpu build tag is set.
package vke
