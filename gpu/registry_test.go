// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"testing"
)

type stubBackend struct{ name string }

func (b stubBackend) Name() string { return b.name }
func (b stubBackend) CreateInstance(InstanceDescriptor) (Instance, error) {
	return nil, errors.New("stub")
}

func registerStub(t *testing.T, name string) {
	t.Helper()
	RegisterBackend(name, func() Backend { return stubBackend{name: name} })
	t.Cleanup(func() { UnregisterBackend(name) })
}

// TestBackendsOrder tests that registered backends are listed by priority.
func TestBackendsOrder(t *testing.T) {
	registerStub(t, "zz-custom")
	registerStub(t, "noop")
	registerStub(t, "vulkan")

	got := Backends()
	pos := map[string]int{}
	for i, n := range got {
		pos[n] = i
	}
	if pos["vulkan"] > pos["noop"] {
		t.Errorf("vulkan listed after noop: %v", got)
	}
	if pos["noop"] > pos["zz-custom"] {
		t.Errorf("noop listed after unknown backend: %v", got)
	}
}

// TestOpenBackendByName tests explicit backend lookup.
func TestOpenBackendByName(t *testing.T) {
	registerStub(t, "test-backend")

	b, err := OpenBackend("test-backend")
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	if b.Name() != "test-backend" {
		t.Errorf("Name() = %q, want %q", b.Name(), "test-backend")
	}
}

// TestOpenBackendMissing tests the typed not-found error.
func TestOpenBackendMissing(t *testing.T) {
	_, err := OpenBackend("does-not-exist")
	var nf *BackendNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("OpenBackend() error = %v, want *BackendNotFoundError", err)
	}
	if nf.Name != "does-not-exist" {
		t.Errorf("Name = %q, want %q", nf.Name, "does-not-exist")
	}
}

// TestOpenBackendBest tests default selection.
func TestOpenBackendBest(t *testing.T) {
	registerStub(t, "vulkan")
	registerStub(t, "noop")

	b, err := OpenBackend("")
	if err != nil {
		t.Fatalf("OpenBackend(\"\") error = %v", err)
	}
	if b.Name() != "vulkan" {
		t.Errorf("Name() = %q, want vulkan", b.Name())
	}
}
