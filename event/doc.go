// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package event provides ordered, synchronous, multi-subscriber signals.
//
// A [Signal] invokes its subscribers in subscription order on the calling
// goroutine. Subscribers may subscribe or unsubscribe (themselves or others)
// while the signal is firing: the fire works on a snapshot of the list, a
// subscriber removed before it is reached is skipped, and a subscriber added
// during a fire is first invoked on the next one.
//
// [ErrSignal] is the fallible variant used by stages whose callbacks can fail.
//
// A [Scope] collects cancel functions and runs them in reverse order when it
// is closed, so an object that subscribes to longer-lived signals can drop
// every subscription in one call:
//
//	var scope event.Scope
//	event.Subscribe(&scope, lifecycle.PreRender, s.onPreRender)
//	event.Subscribe(&scope, win.Resized(), s.onResize)
//	...
//	scope.Close()
//
// Signals are not safe for concurrent use. Firing a signal from a second
// goroutine while another goroutine is inside Fire panics.
package event
