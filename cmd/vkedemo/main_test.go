// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"testing"

	"github.com/gogpu/vke"
	"github.com/gogpu/vke/render"
	"github.com/gogpu/vke/window"
)

// TestSetup runs the demo windows on the noop backend for a few frames.
func TestSetup(t *testing.T) {
	e, err := vke.New(vke.WithBackend("noop"), vke.WithPlatform(window.HeadlessName))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.Lifecycle().Ready.Subscribe(setup)
	var renderers []*render.Renderer
	e.Lifecycle().PostRender.Subscribe(func(f vke.Frame) {
		if f.Number == 0 {
			renderers = e.Stack().Renderers()
		}
	})
	e.Lifecycle().ShouldClose.Subscribe(func(stop *bool) {
		if e.Frame() >= 3 {
			*stop = true
		}
	})

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(renderers) != 3 {
		t.Fatalf("renderers = %d, want 3", len(renderers))
	}
	for _, r := range renderers {
		var g *render.Generic
		switch rec := r.Recorder().(type) {
		case *render.Generic:
			g = rec
		case *render.Rainbow:
			if r.Label() != "rainbow" {
				t.Errorf("renderer %q is a rainbow", r.Label())
			}
			g = rec.Generic
		default:
			t.Fatalf("renderer %q records with %T", r.Label(), rec)
		}
		if g.Draw() == nil {
			t.Errorf("renderer %q does not draw the triangle", r.Label())
		}
		if r.Frames() != 3 {
			t.Errorf("renderer %q frames = %d, want 3", r.Label(), r.Frames())
		}
	}
}
