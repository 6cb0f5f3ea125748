// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command vkedemo opens three windows drawing a triangle: one cleared to
// red, one cleared to green, and one cycling through the rainbow. Closing
// a window removes it; the demo ends when the last one is closed.
//
// By default it runs on the noop backend with headless windows. Build with
// -tags sdl and pass -backend vulkan for real windows:
//
//	go run -tags sdl ./cmd/vkedemo -backend vulkan
package main

import (
	"context"
	"flag"
	"image/color"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/image/colornames"

	"github.com/gogpu/vke"
	"github.com/gogpu/vke/gpu"
	"github.com/gogpu/vke/pipeline"
	"github.com/gogpu/vke/render"
	"github.com/gogpu/vke/window"
)

func main() {
	var (
		backend  = flag.String("backend", "noop", "gpu backend (vulkan, metal, dx12, gl, noop)")
		platform = flag.String("platform", "", "window platform (sdl, headless); empty picks the best available")
		frames   = flag.Uint64("frames", 0, "quit after this many frames; 0 runs until all windows close")
		inFlight = flag.Int("frames-in-flight", 2, "frames in flight per renderer")
		vsync    = flag.Bool("vsync", true, "limit presentation to the display refresh rate")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	e, err := vke.New(
		vke.WithName("vkedemo"),
		vke.WithVersion(vke.Version{Major: 0, Minor: 1}),
		vke.WithBackend(*backend),
		vke.WithPlatform(*platform),
		vke.WithFramesInFlight(*inFlight),
		vke.WithVSync(*vsync),
		vke.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))),
	)
	if err != nil {
		log.Fatalf("vkedemo: %v", err)
	}

	e.Lifecycle().Ready.Subscribe(setup)
	if *frames > 0 {
		e.Lifecycle().ShouldClose.Subscribe(func(stop *bool) {
			if e.Frame() >= *frames {
				*stop = true
			}
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := e.Run(ctx); err != nil {
		log.Fatalf("vkedemo: %v", err)
	}
	log.Printf("vkedemo: %d frames", e.Frame())
}

// setup opens the demo windows. Every window draws the triangle; the
// rainbow window also cycles its clear color.
func setup(e *vke.Engine) error {
	for _, d := range []struct {
		title   string
		clear   color.Color
		rainbow bool
	}{
		{"red", colornames.Red, false},
		{"green", colornames.Green, false},
		{"rainbow", colornames.Black, true},
	} {
		w, err := e.CreateWindow(window.Options{Title: d.title, Width: 640, Height: 480, Resizable: true})
		if err != nil {
			return err
		}
		draw, err := drawTriangle(e, w)
		if err != nil {
			return err
		}
		opts := []render.GenericOption{render.WithClearColor(d.clear), draw}

		var rec render.FrameRecorder
		if d.rainbow {
			rec, err = render.NewRainbow(w.Surface, opts...)
		} else {
			rec, err = render.NewGeneric(w.Surface, opts...)
		}
		if err != nil {
			return err
		}
		if _, err := e.NewRenderer(w, rec, d.title); err != nil {
			return err
		}
	}
	return nil
}

// drawTriangle returns a draw option binding the triangle pipeline of w.
func drawTriangle(e *vke.Engine, w *window.Entry) (render.GenericOption, error) {
	tri, err := triangle(e, w)
	if err != nil {
		return nil, err
	}
	return render.WithDraw(func(cb gpu.CommandBuffer, _ render.FrameInfo) error {
		tri.Bind(cb)
		cb.Draw(3, 1, 0, 0)
		return nil
	}), nil
}

// triangle builds the built-in triangle pipeline for w's surface format and
// gives it to the surface's node.
func triangle(e *vke.Engine, w *window.Entry) (*pipeline.Graphics, error) {
	dev := e.Device()
	layout, err := pipeline.NewLayout(dev, "triangle")
	if err != nil {
		return nil, err
	}
	shader, err := pipeline.NewShader(dev, "triangle", pipeline.TriangleSource())
	if err != nil {
		_ = layout.Release()
		return nil, err
	}
	g, err := pipeline.NewGraphics(dev, pipeline.GraphicsDescriptor{
		Label:       "triangle",
		Layout:      layout,
		Vertex:      pipeline.ShaderStage{Shader: shader, EntryPoint: "vs_main"},
		Fragment:    pipeline.ShaderStage{Shader: shader, EntryPoint: "fs_main"},
		ColorFormat: w.Surface.Format(),
	})
	if err != nil {
		_ = shader.Release()
		_ = layout.Release()
		return nil, err
	}
	pipeline.Attach(e.Tree(), w.Node, g)
	return g, nil
}
