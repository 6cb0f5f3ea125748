// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package window

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/event"
	"github.com/gogpu/vke/internal/gputest"
	"github.com/gogpu/vke/owner"
	"github.com/gogpu/vke/surface"
)

type managerFixture struct {
	platform *Headless
	inst     *gputest.Instance
	dev      *gputest.Device
	tree     *owner.Tree
	osPoll   *event.Signal[int]
	quits    int
	mgr      *Manager
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	dev := gputest.NewDevice()
	f := &managerFixture{
		platform: NewHeadless(),
		inst:     &gputest.Instance{AdapterList: []*gputest.Adapter{gputest.NewAdapter("fake", gputypes.DeviceTypeDiscreteGPU, dev)}},
		dev:      dev,
		tree:     &owner.Tree{},
		osPoll:   event.New[int]("os-poll"),
	}
	f.mgr = NewManager(ManagerConfig{
		Platform: f.platform,
		Tree:     f.tree,
		OSPoll:   f.osPoll,
		Quit:     func() { f.quits++ },
		Surfaces: func(w Window) (*surface.Surface, error) {
			return surface.New(surface.Config{
				Instance: f.inst,
				Adapter:  f.inst.AdapterList[0],
				Device:   dev,
				Window:   w,
				Label:    w.Title(),
			})
		},
	})
	return f
}

func TestManagerCreate(t *testing.T) {
	f := newManagerFixture(t)

	e, err := f.mgr.Create(Options{Title: "main", Width: 640, Height: 480})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.Surface == nil || e.Surface.Label() != "main" {
		t.Fatalf("Create() surface = %v, want surface labeled main", e.Surface)
	}
	if !f.tree.Valid(e.Node) {
		t.Error("surface node is not in the tree")
	}
	if f.mgr.Len() != 1 || f.mgr.ShouldClose() {
		t.Errorf("Len() = %d, ShouldClose() = %v; want 1, false", f.mgr.Len(), f.mgr.ShouldClose())
	}
	if f.mgr.Entry(e.Window) != e {
		t.Error("Entry() did not return the created entry")
	}
}

func TestManagerAddTwicePanics(t *testing.T) {
	f := newManagerFixture(t)
	e, err := f.mgr.Create(DefaultOptions())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Add() of a managed window did not panic")
		}
	}()
	_, _ = f.mgr.Add(e.Window)
}

// TestManagerCloseRequestRemovesWindow tests that a close request seen
// during the OS-poll stage removes only that window.
func TestManagerCloseRequestRemovesWindow(t *testing.T) {
	f := newManagerFixture(t)
	a, err := f.mgr.Create(Options{Title: "a", Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Create(a) error = %v", err)
	}
	b, err := f.mgr.Create(Options{Title: "b", Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("Create(b) error = %v", err)
	}

	f.osPoll.Fire(0)
	if f.mgr.Len() != 2 {
		t.Fatalf("Len() = %d before any close request, want 2", f.mgr.Len())
	}

	a.Window.(*HeadlessWindow).RequestClose()
	f.osPoll.Fire(0)
	if f.quits != 0 {
		t.Errorf("quits = %d after closing one window, want 0", f.quits)
	}
	if f.mgr.Len() != 1 || f.mgr.Entry(b.Window) != b {
		t.Errorf("Len() = %d, want only b managed", f.mgr.Len())
	}
	if a.Surface.Alive() || !b.Surface.Alive() {
		t.Errorf("surfaces alive = %v, %v; want false, true", a.Surface.Alive(), b.Surface.Alive())
	}
	if f.mgr.ShouldClose() {
		t.Error("ShouldClose() = true with a window left")
	}

	b.Window.(*HeadlessWindow).RequestClose()
	f.osPoll.Fire(0)
	if !f.mgr.ShouldClose() {
		t.Error("ShouldClose() = false after the last window closed")
	}
	if f.osPoll.Len() != 1 {
		t.Errorf("os-poll subscribers = %d, want only the platform pump", f.osPoll.Len())
	}
	if f.platform.Polls() != 3 {
		t.Errorf("Polls() = %d, want 3", f.platform.Polls())
	}
}

// TestManagerPlatformQuit tests that a platform quit request calls Quit
// and leaves the windows in place.
func TestManagerPlatformQuit(t *testing.T) {
	f := newManagerFixture(t)
	if _, err := f.mgr.Create(DefaultOptions()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	f.platform.RequestQuit()
	if f.platform.QuitRequested() {
		t.Fatal("QuitRequested() = true before poll")
	}
	f.osPoll.Fire(0)
	if f.quits != 1 {
		t.Errorf("quits = %d, want 1", f.quits)
	}
	if f.mgr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.mgr.Len())
	}
}

// TestManagerResizeReachesSurface tests the resize path from platform poll
// to the surface's pending flag.
func TestManagerResizeReachesSurface(t *testing.T) {
	f := newManagerFixture(t)
	e, err := f.mgr.Create(DefaultOptions())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	e.Window.(*HeadlessWindow).Resize(1024, 768)
	if e.Surface.Pending() {
		t.Fatal("surface pending before poll")
	}
	f.osPoll.Fire(0)
	if !e.Surface.Pending() {
		t.Error("surface not pending after resize was polled")
	}
}

// TestManagerRemoveDestroysOwned tests that removing a window releases what
// its surface owns, then the surface, then the window.
func TestManagerRemoveDestroysOwned(t *testing.T) {
	f := newManagerFixture(t)
	e, err := f.mgr.Create(DefaultOptions())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var order []string
	f.tree.Adopt(e.Node, owner.ReleaseFunc(func() error {
		if !e.Surface.Alive() {
			order = append(order, "renderer after surface")
		}
		order = append(order, "renderer")
		return nil
	}))

	if err := f.mgr.Remove(e.Window); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(order) != 1 || order[0] != "renderer" {
		t.Errorf("release order = %v, want [renderer]", order)
	}
	if e.Surface.Alive() {
		t.Error("surface still alive after Remove")
	}
	if len(f.platform.Windows()) != 0 {
		t.Error("window not closed after Remove")
	}
	if f.tree.Len() != 0 {
		t.Errorf("tree Len() = %d, want 0", f.tree.Len())
	}
	if !f.mgr.ShouldClose() {
		t.Error("ShouldClose() = false with no windows")
	}
	if err := f.mgr.Remove(e.Window); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestManagerClose(t *testing.T) {
	f := newManagerFixture(t)
	for _, title := range []string{"a", "b", "c"} {
		if _, err := f.mgr.Create(Options{Title: title, Width: 100, Height: 100}); err != nil {
			t.Fatalf("Create(%s) error = %v", title, err)
		}
	}

	if err := f.mgr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if f.mgr.Len() != 0 {
		t.Errorf("Len() = %d after Close, want 0", f.mgr.Len())
	}
	if f.osPoll.Len() != 0 {
		t.Errorf("os-poll subscribers = %d after Close, want 0", f.osPoll.Len())
	}
	for i, s := range f.inst.Surfaces {
		if !s.Destroyed {
			t.Errorf("native surface %d not destroyed", i)
		}
	}
	if _, err := f.mgr.Create(DefaultOptions()); !errors.Is(err, ErrClosed) {
		t.Errorf("Create() after Close error = %v, want ErrClosed", err)
	}
}

func TestManagerSurfaceFailure(t *testing.T) {
	f := newManagerFixture(t)
	boom := errors.New("boom")
	f.mgr.cfg.Surfaces = func(Window) (*surface.Surface, error) { return nil, boom }

	if _, err := f.mgr.Create(DefaultOptions()); !errors.Is(err, boom) {
		t.Fatalf("Create() error = %v, want %v", err, boom)
	}
	if len(f.platform.Windows()) != 0 {
		t.Error("window left open after surface failure")
	}
	if f.mgr.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.mgr.Len())
	}
}
