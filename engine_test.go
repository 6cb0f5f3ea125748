// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vke

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/colornames"

	"github.com/gogpu/vke/gpu"
	"github.com/gogpu/vke/internal/gputest"
	"github.com/gogpu/vke/render"
	"github.com/gogpu/vke/window"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithBackend("noop"), WithPlatform(window.HeadlessName), WithName("test")}, opts...)
	e, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

// stopAfter ends the loop once n iterations have completed.
func stopAfter(e *Engine, n uint64) {
	e.Lifecycle().ShouldClose.Subscribe(func(stop *bool) {
		if e.Frame() >= n {
			*stop = true
		}
	})
}

// openWindow creates a window at Ready.
func openWindow(e *Engine, title string) **window.Entry {
	var entry *window.Entry
	e.Lifecycle().Ready.Subscribe(func(e *Engine) error {
		var err error
		entry, err = e.CreateWindow(window.Options{Title: title, Width: 320, Height: 240})
		return err
	})
	return &entry
}

// record appends name to log whenever any stage fires.
func record(lc *Lifecycle, log *[]string) {
	add := func(name string) { *log = append(*log, name) }
	before, after := lc.startStages()
	for _, s := range append(before, after...) {
		s.Subscribe(func(*Engine) error { add(s.Name()); return nil })
	}
	lc.Configure.Subscribe(func(*AppConfiguration) error { add(lc.Configure.Name()); return nil })
	for _, s := range lc.frameStages() {
		s.Subscribe(func(Frame) { add(s.Name()) })
	}
	lc.ShouldClose.Subscribe(func(*bool) { add(lc.ShouldClose.Name()) })
	for _, s := range lc.cleanupStages() {
		s.Subscribe(func(*Engine) error { add(s.Name()); return nil })
	}
}

var (
	startOrder = []string{
		"start", "load-api", "query-availability", "configure", "create-instance",
		"post-instance", "select-device", "post-device", "window-manager", "ready",
	}
	frameOrder = []string{
		"os-poll", "pre-update", "update", "post-update", "pre-render", "render", "post-render", "should-close",
	}
	cleanupOrder = []string{
		"cleanup", "wait-idle", "cleanup-user", "cleanup-window-manager",
		"cleanup-stack", "cleanup-device", "cleanup-physical-device", "cleanup-instance",
	}
)

func TestStageOrder(t *testing.T) {
	e := newTestEngine(t)
	openWindow(e, "main")
	stopAfter(e, 2)
	var log []string
	record(e.Lifecycle(), &log)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := slices.Concat(startOrder, []string{"should-close"}, frameOrder, frameOrder, cleanupOrder)
	if !slices.Equal(log, want) {
		t.Errorf("stage order =\n%v\nwant\n%v", log, want)
	}
	if e.Frame() != 2 {
		t.Errorf("Frame() = %d, want 2", e.Frame())
	}
}

func TestStartFailureAborts(t *testing.T) {
	e := newTestEngine(t)
	boom := errors.New("boom")
	e.Lifecycle().PostDevice.Subscribe(func(*Engine) error { return boom })
	var log []string
	record(e.Lifecycle(), &log)

	err := e.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want boom", err)
	}
	var serr *StageError
	if !errors.As(err, &serr) || serr.Stage != "post-device" {
		t.Errorf("Run() error = %v, want *StageError for post-device", err)
	}

	// The failing subscriber was added before record's, so post-device is
	// not logged.
	want := slices.Concat(startOrder[:7], cleanupOrder)
	if !slices.Equal(log, want) {
		t.Errorf("stage order =\n%v\nwant\n%v", log, want)
	}
	if e.Device() != nil || e.Instance() != nil || e.Adapter() != nil {
		t.Error("cleanup left GPU objects behind")
	}
}

func TestStartUnknownBackend(t *testing.T) {
	e := newTestEngine(t, WithBackend("nope"))
	err := e.Run(context.Background())
	var nf *gpu.BackendNotFoundError
	if !errors.As(err, &nf) || nf.Name != "nope" {
		t.Errorf("Run() error = %v, want *gpu.BackendNotFoundError", err)
	}
}

func TestCleanupBestEffort(t *testing.T) {
	e := newTestEngine(t)
	boom := errors.New("user cleanup failed")
	e.Lifecycle().CleanupUser.Subscribe(func(*Engine) error { return boom })
	instanceCleaned := false
	e.Lifecycle().CleanupInstance.Subscribe(func(*Engine) error {
		instanceCleaned = true
		return nil
	})

	err := e.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want the cleanup failure", err)
	}
	if !instanceCleaned {
		t.Error("cleanup stopped after a failing step")
	}
	if e.Instance() != nil {
		t.Error("instance not destroyed")
	}
}

func TestConfigure(t *testing.T) {
	e := newTestEngine(t, WithVersion(Version{1, 2, 3}), WithFramesInFlight(3))
	e.Lifecycle().Configure.Subscribe(func(c *AppConfiguration) error {
		c.Name = "configured"
		return nil
	})
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	cfg := e.Config()
	if cfg.Name != "configured" || cfg.Version != (Version{1, 2, 3}) || cfg.Device.FramesInFlight != 3 {
		t.Errorf("Config() = %+v", cfg)
	}
	if cfg.Device.Backend != "noop" {
		t.Errorf("Backend = %q, want noop", cfg.Device.Backend)
	}
}

func TestConfigureInvalidFramesInFlight(t *testing.T) {
	e := newTestEngine(t)
	e.Lifecycle().Configure.Subscribe(func(c *AppConfiguration) error {
		c.Device.FramesInFlight = 0
		return nil
	})
	var serr *StageError
	if err := e.Run(context.Background()); !errors.As(err, &serr) || serr.Stage != "configure" {
		t.Errorf("Run() error = %v, want configure stage error", err)
	}
}

func TestNewInvalidFramesInFlight(t *testing.T) {
	if _, err := New(WithFramesInFlight(0)); err == nil {
		t.Error("New() with zero frames in flight succeeded")
	}
}

func TestRunTwice(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := e.Run(context.Background()); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRun", err)
	}
}

// TestNoWindowsCloses tests that should-close is consulted before the
// first iteration, so an engine without windows runs no frames.
func TestNoWindowsCloses(t *testing.T) {
	e := newTestEngine(t)
	frames := 0
	e.Lifecycle().OSPoll.Subscribe(func(Frame) { frames++ })
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.Frame() != 0 || frames != 0 {
		t.Errorf("Frame() = %d, os-poll fired %d times; want 0, 0", e.Frame(), frames)
	}
}

func TestContextCanceled(t *testing.T) {
	e := newTestEngine(t)
	openWindow(e, "main")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.Frame() != 0 {
		t.Errorf("Frame() = %d, want 0", e.Frame())
	}
}

// TestLastWindowCloseEndsLoop tests that closing the only window removes
// it at the next OS poll and ends the loop at the end of that iteration.
func TestLastWindowCloseEndsLoop(t *testing.T) {
	e := newTestEngine(t)
	entry := openWindow(e, "main")
	e.Lifecycle().PostUpdate.Subscribe(func(f Frame) {
		if f.Number == 0 {
			(*entry).Window.(*window.HeadlessWindow).RequestClose()
		}
	})
	stopAfter(e, 10)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.Frame() != 2 {
		t.Errorf("Frame() = %d, want 2", e.Frame())
	}
}

// TestWindowCloseKeepsOthers tests that closing one of two windows removes
// it and its renderer while the other keeps rendering.
func TestWindowCloseKeepsOthers(t *testing.T) {
	e := newTestEngine(t)
	entries := map[string]*window.Entry{}
	renderers := map[string]*render.Renderer{}
	e.Lifecycle().Ready.Subscribe(func(e *Engine) error {
		for _, title := range []string{"a", "b"} {
			w, err := e.CreateWindow(window.Options{Title: title, Width: 64, Height: 64})
			if err != nil {
				return err
			}
			g, err := render.NewGeneric(w.Surface)
			if err != nil {
				return err
			}
			if renderers[title], err = e.NewRenderer(w, g, title); err != nil {
				return err
			}
			entries[title] = w
		}
		return nil
	})
	e.Lifecycle().PostUpdate.Subscribe(func(f Frame) {
		if f.Number == 0 {
			entries["a"].Window.(*window.HeadlessWindow).RequestClose()
		}
	})
	var windows, stacked int
	e.Lifecycle().PostRender.Subscribe(func(f Frame) {
		if f.Number == 3 {
			windows, stacked = e.Windows().Len(), e.Stack().Len()
		}
	})
	stopAfter(e, 4)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if windows != 1 || stacked != 1 {
		t.Errorf("at frame 3: windows = %d, stack Len() = %d; want 1, 1", windows, stacked)
	}
	if a, b := renderers["a"].Frames(), renderers["b"].Frames(); a != 1 || b != 4 {
		t.Errorf("frames = %d, %d, want 1, 4", a, b)
	}
	if e.Frame() != 4 {
		t.Errorf("Frame() = %d, want 4", e.Frame())
	}
}

// TestPlatformQuit tests that a platform quit request ends the loop with
// windows still open.
func TestPlatformQuit(t *testing.T) {
	e := newTestEngine(t)
	openWindow(e, "main")
	e.Lifecycle().PostUpdate.Subscribe(func(f Frame) {
		if f.Number == 0 {
			e.Windows().Platform().(*window.Headless).RequestQuit()
		}
	})
	stopAfter(e, 10)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if e.Frame() != 2 {
		t.Errorf("Frame() = %d, want 2", e.Frame())
	}
}

// TestRenderers tests renderers drawing into two windows on the noop
// backend, with one renderer removed from the stack halfway.
func TestRenderers(t *testing.T) {
	e := newTestEngine(t)
	var red, green *render.Renderer
	e.Lifecycle().Ready.Subscribe(func(e *Engine) error {
		for _, tc := range []struct {
			title string
			out   **render.Renderer
		}{{"red", &red}, {"green", &green}} {
			w, err := e.CreateWindow(window.Options{Title: tc.title, Width: 64, Height: 64})
			if err != nil {
				return err
			}
			g, err := render.NewGeneric(w.Surface, render.WithClearColor(colornames.Red))
			if err != nil {
				return err
			}
			if *tc.out, err = e.NewRenderer(w, g, tc.title); err != nil {
				return err
			}
		}
		return nil
	})
	e.Lifecycle().PostRender.Subscribe(func(f Frame) {
		if f.Number == 1 && !e.RemoveRenderer(green) {
			t.Error("RemoveRenderer(green) = false")
		}
	})
	stopAfter(e, 4)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if red.Frames() != 4 || green.Frames() != 2 {
		t.Errorf("frames = %d, %d, want 4, 2", red.Frames(), green.Frames())
	}
	if e.Stack().Len() != 0 || e.Tree().Len() != 0 {
		t.Errorf("after Run: stack Len() = %d, tree Len() = %d", e.Stack().Len(), e.Tree().Len())
	}
	if !errors.Is(red.Render(), render.ErrClosed) {
		t.Error("renderer not closed by cleanup")
	}
}

func TestCreateWindowBeforeStart(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.CreateWindow(window.DefaultOptions()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("CreateWindow() error = %v, want ErrNotStarted", err)
	}
}

func TestOwn(t *testing.T) {
	e := newTestEngine(t)
	var order []string
	rel := func(name string) func() error {
		return func() error { order = append(order, name); return nil }
	}
	tree := e.Tree()
	parent := tree.Add(ownerFunc(rel("parent")))
	child := tree.Add(ownerFunc(rel("child")))
	e.Own(parent, child)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !slices.Equal(order, []string{"child", "parent"}) {
		t.Errorf("release order = %v, want [child parent]", order)
	}
}

type ownerFunc func() error

func (f ownerFunc) Release() error { return f() }

func TestSelectAdapter(t *testing.T) {
	adapters := func(types ...gputypes.DeviceType) []gpu.Adapter {
		out := make([]gpu.Adapter, len(types))
		for i, typ := range types {
			out[i] = gputest.NewAdapter("a", typ, gputest.NewDevice())
		}
		return out
	}
	tests := []struct {
		name  string
		types []gputypes.DeviceType
		pref  gputypes.PowerPreference
		want  int
	}{
		{"empty", nil, gputypes.PowerPreferenceNone, -1},
		{"discrete wins", []gputypes.DeviceType{gputypes.DeviceTypeIntegratedGPU, gputypes.DeviceTypeDiscreteGPU}, gputypes.PowerPreferenceHighPerformance, 1},
		{"low power", []gputypes.DeviceType{gputypes.DeviceTypeIntegratedGPU, gputypes.DeviceTypeDiscreteGPU}, gputypes.PowerPreferenceLowPower, 0},
		{"cpu over other", []gputypes.DeviceType{gputypes.DeviceTypeOther, gputypes.DeviceTypeCPU}, gputypes.PowerPreferenceNone, 1},
		{"first of equals", []gputypes.DeviceType{gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeDiscreteGPU}, gputypes.PowerPreferenceNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectAdapter(adapters(tt.types...), tt.pref); got != tt.want {
				t.Errorf("SelectAdapter() = %d, want %d", got, tt.want)
			}
		})
	}
}
