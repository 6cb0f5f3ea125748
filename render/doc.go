// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render drives per-frame command recording and submission.
//
// A [Renderer] renders into the images of an [ImageSupplier], keeping up to
// N frames in flight. Each of the N frame slots owns a read-ready semaphore,
// a write-done semaphore, a fence and a command buffer. Render advances one
// frame:
//
//  1. select slot i = frame mod N
//  2. wait for slot i's fence, so the slot's previous frame has completed
//  3. acquire the next image, asking the supplier to signal read-ready
//  4. RenderFrameEarly, then record RenderFrame into slot i's command buffer
//  5. submit, waiting on read-ready when the supplier says so, signaling
//     write-done and the fence
//  6. return the image to the supplier with write-done
//  7. advance to the next slot
//
// When the supplier cannot provide an image this frame, Render fails with
// [ErrImageNotAvailable]. This is recoverable: the [Stack] skips that
// renderer for the frame and carries on with the others.
//
// What a renderer draws comes from its [FrameRecorder]. [Generic] records a
// clear of the whole image plus an optional draw callback, and [Rainbow]
// composes Generic with a clear color cycling through the hue circle.
package render
