// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vke

import (
	"time"

	"github.com/gogpu/vke/event"
)

// Frame is the payload of the per-frame stages.
type Frame struct {
	// Number counts loop iterations, starting at 0.
	Number uint64
	// Delta is the time since the previous iteration began.
	Delta time.Duration
	// Elapsed is the time since the loop started.
	Elapsed time.Duration
}

// Lifecycle holds the engine's stages.
//
// Startup stages run in field order: Start, then LoadAPI through
// WindowManager, then Ready. An error returned by a startup subscriber
// aborts startup. ShouldClose fires once before the first iteration; the
// per-frame stages then run in field order from OSPoll to ShouldClose on
// every loop iteration. Cleanup runs once, followed by its
// sub-stages in field order; every cleanup subscriber runs even when an
// earlier one failed.
//
// The engine subscribes its own work to the stages when it is created,
// so it runs before any application subscriber of the same stage.
type Lifecycle struct {
	Start             *event.ErrSignal[*Engine]
	LoadAPI           *event.ErrSignal[*Engine]
	QueryAvailability *event.ErrSignal[*Engine]
	Configure         *event.ErrSignal[*AppConfiguration]
	CreateInstance    *event.ErrSignal[*Engine]
	PostInstance      *event.ErrSignal[*Engine]
	SelectDevice      *event.ErrSignal[*Engine]
	PostDevice        *event.ErrSignal[*Engine]
	WindowManager     *event.ErrSignal[*Engine]
	Ready             *event.ErrSignal[*Engine]

	OSPoll     *event.Signal[Frame]
	PreUpdate  *event.Signal[Frame]
	Update     *event.Signal[Frame]
	PostUpdate *event.Signal[Frame]
	PreRender  *event.Signal[Frame]
	Render     *event.Signal[Frame]
	PostRender *event.Signal[Frame]
	// ShouldClose subscribers set the flag to end the loop after this
	// iteration. No subscriber may clear it.
	ShouldClose *event.Signal[*bool]

	Cleanup               *event.ErrSignal[*Engine]
	WaitIdle              *event.ErrSignal[*Engine]
	CleanupUser           *event.ErrSignal[*Engine]
	CleanupWindowManager  *event.ErrSignal[*Engine]
	CleanupStack          *event.ErrSignal[*Engine]
	CleanupDevice         *event.ErrSignal[*Engine]
	CleanupPhysicalDevice *event.ErrSignal[*Engine]
	CleanupInstance       *event.ErrSignal[*Engine]
}

// NewLifecycle creates a lifecycle with empty stages.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		Start:             event.NewErr[*Engine]("start"),
		LoadAPI:           event.NewErr[*Engine]("load-api"),
		QueryAvailability: event.NewErr[*Engine]("query-availability"),
		Configure:         event.NewErr[*AppConfiguration]("configure"),
		CreateInstance:    event.NewErr[*Engine]("create-instance"),
		PostInstance:      event.NewErr[*Engine]("post-instance"),
		SelectDevice:      event.NewErr[*Engine]("select-device"),
		PostDevice:        event.NewErr[*Engine]("post-device"),
		WindowManager:     event.NewErr[*Engine]("window-manager"),
		Ready:             event.NewErr[*Engine]("ready"),

		OSPoll:      event.New[Frame]("os-poll"),
		PreUpdate:   event.New[Frame]("pre-update"),
		Update:      event.New[Frame]("update"),
		PostUpdate:  event.New[Frame]("post-update"),
		PreRender:   event.New[Frame]("pre-render"),
		Render:      event.New[Frame]("render"),
		PostRender:  event.New[Frame]("post-render"),
		ShouldClose: event.New[*bool]("should-close"),

		Cleanup:               event.NewErr[*Engine]("cleanup"),
		WaitIdle:              event.NewErr[*Engine]("wait-idle"),
		CleanupUser:           event.NewErr[*Engine]("cleanup-user"),
		CleanupWindowManager:  event.NewErr[*Engine]("cleanup-window-manager"),
		CleanupStack:          event.NewErr[*Engine]("cleanup-stack"),
		CleanupDevice:         event.NewErr[*Engine]("cleanup-device"),
		CleanupPhysicalDevice: event.NewErr[*Engine]("cleanup-physical-device"),
		CleanupInstance:       event.NewErr[*Engine]("cleanup-instance"),
	}
}

// startStages returns the startup sub-stages after Start, in order,
// excluding Configure, which has its own payload.
func (l *Lifecycle) startStages() (before, after []*event.ErrSignal[*Engine]) {
	return []*event.ErrSignal[*Engine]{l.Start, l.LoadAPI, l.QueryAvailability},
		[]*event.ErrSignal[*Engine]{l.CreateInstance, l.PostInstance, l.SelectDevice, l.PostDevice, l.WindowManager, l.Ready}
}

func (l *Lifecycle) frameStages() []*event.Signal[Frame] {
	return []*event.Signal[Frame]{l.OSPoll, l.PreUpdate, l.Update, l.PostUpdate, l.PreRender, l.Render, l.PostRender}
}

func (l *Lifecycle) cleanupStages() []*event.ErrSignal[*Engine] {
	return []*event.ErrSignal[*Engine]{
		l.Cleanup, l.WaitIdle, l.CleanupUser, l.CleanupWindowManager,
		l.CleanupStack, l.CleanupDevice, l.CleanupPhysicalDevice, l.CleanupInstance,
	}
}
