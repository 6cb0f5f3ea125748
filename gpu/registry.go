// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"sort"

	"github.com/gogpu/gpucontext"
)

// backendPriority orders backends from most to least preferred.
var backendPriority = []string{"vulkan", "metal", "dx12", "gl", "noop"}

var backends = gpucontext.NewRegistry[Backend](gpucontext.WithPriority(backendPriority...))

// RegisterBackend makes a backend available under name. Backend packages
// call it from init. Registering an existing name replaces it.
func RegisterBackend(name string, factory func() Backend) {
	backends.Register(name, factory)
}

// UnregisterBackend removes a backend.
func UnregisterBackend(name string) {
	backends.Unregister(name)
}

// Backends returns the registered backend names, most preferred first.
// Names outside the known priority list follow in lexical order.
func Backends() []string {
	names := backends.Available()
	rank := func(n string) int {
		for i, p := range backendPriority {
			if p == n {
				return i
			}
		}
		return len(backendPriority)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

// OpenBackend returns the backend registered under name, or the most
// preferred registered backend when name is empty.
func OpenBackend(name string) (Backend, error) {
	if name == "" {
		if backends.Count() == 0 {
			return nil, ErrNoBackend
		}
		names := Backends()
		return backends.Get(names[0]), nil
	}
	if !backends.Has(name) {
		return nil, &BackendNotFoundError{Name: name}
	}
	return backends.Get(name), nil
}
