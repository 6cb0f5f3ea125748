// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vke

import (
	"log/slog"

	"github.com/gogpu/gputypes"
)

// Option configures an Engine during creation.
//
// Example:
//
//	e, err := vke.New(
//		vke.WithName("demo"),
//		vke.WithBackend("vulkan"),
//		vke.WithFramesInFlight(3),
//	)
type Option func(*options)

type options struct {
	config   AppConfiguration
	platform string
	logger   *slog.Logger
}

func defaultOptions() options {
	return options{config: DefaultConfiguration()}
}

// WithName sets the application name passed to the graphics API.
func WithName(name string) Option {
	return func(o *options) { o.config.Name = name }
}

// WithVersion sets the application version.
func WithVersion(v Version) Option {
	return func(o *options) { o.config.Version = v }
}

// WithBackend selects a gpu backend by name, such as "vulkan" or "noop".
func WithBackend(name string) Option {
	return func(o *options) { o.config.Device.Backend = name }
}

// WithPowerPreference sets the adapter selection preference.
func WithPowerPreference(p gputypes.PowerPreference) Option {
	return func(o *options) { o.config.Device.PowerPreference = p }
}

// WithFramesInFlight sets how many frames renderers created through the
// engine may have in flight.
func WithFramesInFlight(n int) Option {
	return func(o *options) { o.config.Device.FramesInFlight = n }
}

// WithVSync enables or disables vertical sync.
func WithVSync(on bool) Option {
	return func(o *options) { o.config.Device.VSync = on }
}

// WithDebug enables graphics API validation.
func WithDebug(on bool) Option {
	return func(o *options) { o.config.Device.Debug = on }
}

// WithPlatform selects a window platform by name. Empty picks the
// highest-priority available platform.
func WithPlatform(name string) Option {
	return func(o *options) { o.platform = name }
}

// WithLogger sets the logger, as SetLogger does, when the engine is created.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
