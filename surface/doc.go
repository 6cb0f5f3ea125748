// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface implements a presentation surface: an image supplier
// bound to one window, backed by a native surface and its swapchain.
//
// A surface never rebuilds its swapchain in the middle of a frame. Window
// resizes, out-of-date acquisitions and suboptimal results only mark the
// surface as pending recreation. The rebuild happens at the next pre-render
// stage: the surface re-queries the native capabilities, creates a new
// swapchain chained to the old one, retires the old one, and fires
// ImagesChanged with the new images so renderers can rebuild per-image
// resources before they are used.
//
// Swapchain selection:
//
//   - format: BGRA8UnormSrgb if supported, else the first supported format
//   - present mode: Mailbox, else Immediate when vsync is off, else Fifo
//   - extent: the surface's current extent, or the window size clamped to
//     the supported range
//   - image count: one more than the minimum, capped at the maximum
package surface
