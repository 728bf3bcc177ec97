// Package output is the render sink of one execution cycle.
//
// Elements are appended in call order, and that order is the render order
// on the surface.  Enqueue returns a Handle the caller may keep to replace
// the element later in the same cycle (restyling a chart after the fact,
// for instance).  A Tree is safe for concurrent use, though a cycle
// normally appends from a single goroutine.
package output

import (
	"encoding/json"
	"errors"
	"sync"
)

// ErrStaleHandle is returned when a Handle does not belong to the tree.
var ErrStaleHandle = errors.New("output: handle does not belong to this tree")

// Element is one rendered item: a discriminator tag plus its payload.
type Element struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Handle addresses one element in a Tree.
type Handle struct {
	tree  *Tree
	index int
}

// Index is the element's render position.
func (h Handle) Index() int { return h.index }

// Valid reports whether h was issued by a tree.
func (h Handle) Valid() bool { return h.tree != nil }

// Replace swaps the element's payload, keeping its tag and position.
func (h Handle) Replace(payload any) error {
	if h.tree == nil {
		return ErrStaleHandle
	}
	return h.tree.Replace(h, payload)
}

// Tree collects the elements of one cycle.
type Tree struct {
	mu    sync.Mutex
	elems []Element
}

// NewTree returns an empty Tree.
func NewTree() *Tree { return &Tree{} }

// Enqueue appends an element and returns its handle.
func (t *Tree) Enqueue(tag string, payload any) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.elems = append(t.elems, Element{Type: tag, Payload: payload})
	return Handle{tree: t, index: len(t.elems) - 1}
}

// Replace swaps the payload at h.
func (t *Tree) Replace(h Handle, payload any) error {
	if h.tree != t {
		return ErrStaleHandle
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if h.index < 0 || h.index >= len(t.elems) {
		return ErrStaleHandle
	}
	t.elems[h.index].Payload = payload
	return nil
}

// Elements returns a copy of the elements in render order.
func (t *Tree) Elements() []Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Element, len(t.elems))
	copy(out, t.elems)
	return out
}

// Len reports how many elements were enqueued.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.elems)
}

// MarshalJSON encodes the tree as an ordered element array.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Elements())
}
