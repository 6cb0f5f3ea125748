// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package window

import (
	"errors"
	"sort"
	"sync"
)

// PlatformFactory opens a platform.
type PlatformFactory func() (Platform, error)

// RegistryEntry represents a registered platform.
type RegistryEntry struct {
	// Name is the unique identifier for this platform.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: native windowing (SDL)
	//   - 10: headless
	Priority int

	// Factory opens the platform.
	Factory PlatformFactory

	// Available reports if the platform can run on this system.
	Available func() bool
}

var globalRegistry = &Registry{}

// Registry manages registered platforms.
//
// Platforms register themselves from init:
//
//	func init() {
//	    window.Register("sdl", 100, open, available)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and Open.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a platform to the global registry.
//
// If available is nil, the platform is assumed always available.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, factory PlatformFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a platform from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered platform names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all available platforms sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// Get returns information about a specific platform.
func Get(name string) (*RegistryEntry, bool) {
	return globalRegistry.Get(name)
}

// Open opens the named platform, or the best available one when name is
// empty.
func Open(name string) (Platform, error) {
	if name == "" {
		return globalRegistry.OpenBest()
	}
	return globalRegistry.Open(name)
}

// Register adds a platform to this registry.
func (r *Registry) Register(name string, priority int, factory PlatformFactory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a platform from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered platform names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of all available platforms sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Get returns a copy of the named entry.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	entryCopy := *entry
	return &entryCopy, true
}

// OpenBest opens the highest-priority platform that opens successfully.
func (r *Registry) OpenBest() (Platform, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoPlatformAvailable
	}

	var errs []error
	for _, name := range available {
		p, err := r.Open(name)
		if err == nil {
			return p, nil
		}
		slogger().Debug("window: platform failed to open", "platform", name, "err", err)
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// Open opens the named platform.
func (r *Registry) Open(name string) (Platform, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &PlatformNotFoundError{Name: name}
	}
	if !entry.Available() {
		return nil, &PlatformUnavailableError{Name: name}
	}
	return entry.Factory()
}

// sortedNames returns platform names sorted by priority (highest first),
// then by name. Must be called with lock held.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	type entry struct {
		name     string
		priority int
	}

	entries := make([]entry, 0, len(r.entries))
	for name, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, entry{name: name, priority: e.Priority})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].name < entries[j].name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Errors.
var (
	// ErrNoPlatformAvailable is returned when no platform is registered or
	// available on the current system.
	ErrNoPlatformAvailable = errors.New("window: no platform available")

	// ErrClosed is returned by operations on a closed window or platform.
	ErrClosed = errors.New("window: closed")
)

// PlatformNotFoundError indicates a named platform is not registered.
type PlatformNotFoundError struct {
	Name string
}

func (e *PlatformNotFoundError) Error() string {
	return "window: platform not found: " + e.Name
}

// PlatformUnavailableError indicates a platform exists but cannot run here.
type PlatformUnavailableError struct {
	Name string
}

func (e *PlatformUnavailableError) Error() string {
	return "window: platform unavailable: " + e.Name
}

func init() {
	Register(HeadlessName, 10, func() (Platform, error) {
		return NewHeadless(), nil
	}, nil)
}
