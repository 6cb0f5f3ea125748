// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vke

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/vke/render"
)

// AppConfiguration is collected during the Configure stage. The engine
// fills it from its options first; Configure subscribers may change any
// field before the instance is created.
type AppConfiguration struct {
	Name    string
	Version Version
	Device  DeviceOptions
}

// DeviceOptions selects and configures the GPU device.
type DeviceOptions struct {
	// Backend names a registered gpu backend. Empty picks the most
	// preferred one.
	Backend string

	PowerPreference gputypes.PowerPreference

	// VSync limits presentation to the display refresh rate.
	VSync bool

	// Debug enables API validation where the backend supports it.
	Debug bool

	// FramesInFlight is used by renderers created through the engine.
	FramesInFlight int
}

// DefaultConfiguration returns the configuration used when no options are
// given.
func DefaultConfiguration() AppConfiguration {
	return AppConfiguration{
		Name:    "vke",
		Version: Version{Major: 0, Minor: 1},
		Device: DeviceOptions{
			PowerPreference: gputypes.PowerPreferenceHighPerformance,
			VSync:           true,
			FramesInFlight:  render.DefaultFramesInFlight,
		},
	}
}
