// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package owner implements an ownership tree for resources with
// interdependent lifetimes.
//
// Nodes live in an arena and are addressed by [Handle]. A node has at most
// one parent, set once by [Tree.Own]. Destroying a root releases its whole
// subtree deepest-first, so a resource is always released before the
// resource that owns it. Siblings are released in reverse order of
// attachment: the most recently attached child goes first.
//
// Violations of the ownership rules (re-parenting, cycles, destroying a
// node that is still owned, stale handles) are programming errors and panic.
package owner

import (
	"errors"
	"fmt"
)

// Resource is anything that can be placed in the tree.
type Resource interface {
	Release() error
}

// ReleaseFunc adapts a function to Resource.
type ReleaseFunc func() error

// Release calls f.
func (f ReleaseFunc) Release() error {
	if f == nil {
		return nil
	}
	return f()
}

// Handle addresses a node. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("node(%d#%d)", h.index, h.gen)
}

const noParent = -1

type node struct {
	res      Resource
	gen      uint32
	live     bool
	parent   int
	children []uint32
}

// Tree is an arena of owned resources. The zero value is an empty tree.
// A Tree is not safe for concurrent use.
type Tree struct {
	nodes      []node
	free       []uint32
	live       int
	destroying bool
}

// Add inserts r as a new unowned root and returns its handle.
func (t *Tree) Add(r Resource) Handle {
	if r == nil {
		panic("owner: nil resource")
	}
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.nodes))
		t.nodes = append(t.nodes, node{})
	}
	nd := &t.nodes[idx]
	nd.gen++
	nd.res = r
	nd.live = true
	nd.parent = noParent
	nd.children = nd.children[:0]
	t.live++
	return Handle{index: idx, gen: nd.gen}
}

// Own transfers exclusive ownership of child to parent. The child must be
// an unowned root and must not be an ancestor of parent. After the call the
// caller must not Destroy child directly; it is released with parent.
func (t *Tree) Own(parent, child Handle) {
	t.mustMutate()
	p := t.mustGet(parent)
	c := t.mustGet(child)
	if parent == child {
		panic("owner: node cannot own itself")
	}
	if c.parent != noParent {
		panic(fmt.Sprintf("owner: %v already has an owner", child))
	}
	for i := p.parent; i != noParent; i = t.nodes[i].parent {
		if uint32(i) == child.index {
			panic(fmt.Sprintf("owner: %v is an ancestor of %v", child, parent))
		}
	}
	c.parent = int(parent.index)
	p.children = append(p.children, child.index)
}

// Adopt adds r and immediately gives it to parent.
func (t *Tree) Adopt(parent Handle, r Resource) Handle {
	h := t.Add(r)
	t.Own(parent, h)
	return h
}

// Destroy releases h and its entire subtree, deepest first. h must be a
// root; destroying an owned node directly panics. Release errors are
// collected and returned joined; they never stop the traversal.
func (t *Tree) Destroy(h Handle) error {
	t.mustMutate()
	nd := t.mustGet(h)
	if nd.parent != noParent {
		panic(fmt.Sprintf("owner: %v is owned; destroy its owner instead", h))
	}

	t.destroying = true
	defer func() { t.destroying = false }()

	var errs []error
	t.release(h.index, &errs)
	return errors.Join(errs...)
}

// DestroyAll destroys every root, most recently added first.
func (t *Tree) DestroyAll() error {
	var errs []error
	for i := len(t.nodes) - 1; i >= 0; i-- {
		nd := &t.nodes[i]
		if !nd.live || nd.parent != noParent {
			continue
		}
		if err := t.Destroy(Handle{index: uint32(i), gen: nd.gen}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *Tree) release(idx uint32, errs *[]error) {
	nd := &t.nodes[idx]
	children := nd.children
	for i := len(children) - 1; i >= 0; i-- {
		t.release(children[i], errs)
	}

	nd = &t.nodes[idx]
	if err := nd.res.Release(); err != nil {
		*errs = append(*errs, err)
	}
	nd.res = nil
	nd.live = false
	nd.parent = noParent
	nd.children = nd.children[:0]
	t.free = append(t.free, idx)
	t.live--
}

// Valid reports whether h refers to a live node.
func (t *Tree) Valid(h Handle) bool {
	if h.IsZero() || int(h.index) >= len(t.nodes) {
		return false
	}
	nd := &t.nodes[h.index]
	return nd.live && nd.gen == h.gen
}

// Resource returns the resource stored at h.
func (t *Tree) Resource(h Handle) Resource {
	return t.mustGet(h).res
}

// Parent returns the owner of h, if any.
func (t *Tree) Parent(h Handle) (Handle, bool) {
	nd := t.mustGet(h)
	if nd.parent == noParent {
		return Handle{}, false
	}
	return Handle{index: uint32(nd.parent), gen: t.nodes[nd.parent].gen}, true
}

// Children returns the nodes owned by h in attachment order.
func (t *Tree) Children(h Handle) []Handle {
	nd := t.mustGet(h)
	out := make([]Handle, len(nd.children))
	for i, c := range nd.children {
		out[i] = Handle{index: c, gen: t.nodes[c].gen}
	}
	return out
}

// Len returns the number of live nodes.
func (t *Tree) Len() int { return t.live }

func (t *Tree) mustGet(h Handle) *node {
	if !t.Valid(h) {
		panic(fmt.Sprintf("owner: stale or invalid handle %v", h))
	}
	return &t.nodes[h.index]
}

func (t *Tree) mustMutate() {
	if t.destroying {
		panic("owner: tree modified during Destroy")
	}
}
