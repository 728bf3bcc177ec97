// internal/widget/registry.go
//
// Session-scoped widget registry.
//
// A **widget** is a piece of interactive state the host tracks across
// execution cycles.  Every session owns one Registry; the chart binder (and
// any other interactive element) calls Register once per cycle and receives
// the current deserialized value back.  The remote rendering surface pushes
// new values through Apply, and the runner drains queued callbacks with
// RunCallbacks before the next cycle renders.
//
// Lifecycle per execution cycle:
//
//	_ = reg.RunCallbacks(ctx)     // once per changed value
//	reg.BeginRun()
//	st, err := reg.Register(r)    // from the script, any number of widgets
//	reg.EndRun()                  // drop widgets not seen this cycle
//
// Identities come from ComputeID (id.go), so identical element content and
// user key across cycles resolve to the same stored value.  Isolation between
// users is by Registry instance: sessions never share one.
package widget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrDuplicateID is returned when one cycle registers the same id twice.
	ErrDuplicateID = errors.New("widget: duplicate widget id")
	// ErrUnknownWidget is returned by Apply for an id never registered.
	ErrUnknownWidget = errors.New("widget: unknown widget id")
	// ErrRejected is returned by Apply when the value does not deserialize.
	ErrRejected = errors.New("widget: value rejected")
)

// Serializer encodes a widget value for transport and persistence.
type Serializer func(v any) (string, error)

// Deserializer turns the transport value into the widget's Go value.  raw
// is nil when the surface has never reported a value.
type Deserializer func(raw []byte, id string) (any, error)

// Callback runs once per value change, before the next cycle renders.
type Callback func(ctx context.Context) error

// Registration describes one interactive element for a single cycle.
type Registration struct {
	ElementType   string
	ID            string
	Key           string // caller-supplied key, may be empty
	Serializer    Serializer
	Deserializer  Deserializer
	Callback      Callback // optional
	TriggersRerun bool     // whether a value change should start a new cycle
}

// State is what Register hands back to the element.
type State struct {
	Value any
}

type entry struct {
	reg Registration
	raw []byte // last transport value; nil until the surface reports one
}

// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	widgets map[string]*entry
	keys    map[string]string // user key → id
	thisRun map[string]struct{}
	pending []string // ids with a changed value awaiting their callback
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		widgets: make(map[string]*entry),
		keys:    make(map[string]string),
		thisRun: make(map[string]struct{}),
	}
}

// BeginRun marks the start of an execution cycle.
func (r *Registry) BeginRun() {
	r.mu.Lock()
	r.thisRun = make(map[string]struct{})
	r.mu.Unlock()
}

// Register records reg for the current cycle and returns its current value.
func (r *Registry) Register(reg Registration) (State, error) {
	if reg.ID == "" {
		return State{}, errors.New("widget: registration without id")
	}
	if reg.Deserializer == nil || reg.Serializer == nil {
		return State{}, fmt.Errorf("widget %s: serializer and deserializer are required", reg.ID)
	}

	r.mu.Lock()
	if _, dup := r.thisRun[reg.ID]; dup {
		r.mu.Unlock()
		return State{}, fmt.Errorf("%w: %s (key %q)", ErrDuplicateID, reg.ElementType, reg.Key)
	}
	if reg.Key != "" {
		if other, ok := r.keys[reg.Key]; ok && other != reg.ID {
			if _, seen := r.thisRun[other]; seen {
				r.mu.Unlock()
				return State{}, fmt.Errorf("%w: key %q already used by another %s this cycle", ErrDuplicateID, reg.Key, reg.ElementType)
			}
		}
	}
	r.thisRun[reg.ID] = struct{}{}

	e, ok := r.widgets[reg.ID]
	if !ok {
		e = &entry{}
		r.widgets[reg.ID] = e
	}
	e.reg = reg
	if reg.Key != "" {
		r.keys[reg.Key] = reg.ID
	}
	raw := e.raw
	r.mu.Unlock()

	v, err := reg.Deserializer(raw, reg.ID)
	if err != nil {
		return State{}, fmt.Errorf("widget %s: deserialize: %w", reg.ID, err)
	}
	return State{Value: v}, nil
}

// Apply stores a new transport value reported by the surface.  It returns
// whether the change should trigger a new execution cycle.  A value equal
// to the stored one is a no-op; equality is decided on the registration's
// serialized form, so whitespace and key order do not count as a change.
func (r *Registry) Apply(id string, raw []byte) (rerun bool, err error) {
	r.mu.Lock()
	e, ok := r.widgets[id]
	if !ok {
		r.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	reg, prev := e.reg, e.raw
	r.mu.Unlock()

	// Reject values the element cannot read before storing them.
	next, err := canonical(reg, raw, id)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrRejected, id, err)
	}
	if prev != nil {
		if cur, err := canonical(reg, prev, id); err == nil && cur == next {
			return false, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok = r.widgets[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	if e.raw != nil && bytes.Equal(e.raw, raw) {
		return false, nil // applied concurrently
	}
	e.raw = append([]byte(nil), raw...)
	if e.reg.Callback != nil && !containsID(r.pending, id) {
		r.pending = append(r.pending, id)
	}
	return e.reg.TriggersRerun, nil
}

// RunCallbacks invokes the callback of every widget whose value changed
// since the last call, once each and in the order the changes arrived.
// Errors are joined; a failing callback does not skip the others.
func (r *Registry) RunCallbacks(ctx context.Context) error {
	r.mu.Lock()
	ids := r.pending
	r.pending = nil
	cbs := make([]Callback, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.widgets[id]; ok && e.reg.Callback != nil {
			cbs = append(cbs, e.reg.Callback)
		}
	}
	r.mu.Unlock()

	var errs []error
	for _, cb := range cbs {
		if err := cb(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EndRun drops every widget not registered during the current cycle.
func (r *Registry) EndRun() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.widgets {
		if _, seen := r.thisRun[id]; seen {
			continue
		}
		delete(r.widgets, id)
		if e.reg.Key != "" && r.keys[e.reg.Key] == id {
			delete(r.keys, e.reg.Key)
		}
	}
	kept := r.pending[:0]
	for _, id := range r.pending {
		if _, ok := r.widgets[id]; ok {
			kept = append(kept, id)
		}
	}
	r.pending = kept
}

// Value returns the deserialized current value of id.
func (r *Registry) Value(id string) (any, error) {
	r.mu.Lock()
	e, ok := r.widgets[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	reg, raw := e.reg, e.raw
	r.mu.Unlock()
	return reg.Deserializer(raw, id)
}

// ValueByKey resolves a caller-supplied key to its widget's current value.
func (r *Registry) ValueByKey(key string) (any, bool) {
	r.mu.Lock()
	id, ok := r.keys[key]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	v, err := r.Value(id)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Serialized encodes the current value of id with its own serializer.
func (r *Registry) Serialized(id string) (string, error) {
	r.mu.Lock()
	e, ok := r.widgets[id]
	if !ok {
		r.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	reg, raw := e.reg, e.raw
	r.mu.Unlock()

	v, err := reg.Deserializer(raw, id)
	if err != nil {
		return "", err
	}
	return reg.Serializer(v)
}

// Snapshot serializes every tracked widget, keyed by id.
func (r *Registry) Snapshot() (map[string]string, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.widgets))
	for id := range r.widgets {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		s, err := r.Serialized(id)
		if errors.Is(err, ErrUnknownWidget) {
			continue // dropped concurrently
		}
		if err != nil {
			return nil, err
		}
		out[id] = s
	}
	return out, nil
}

// Len reports how many widgets are tracked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.widgets)
}

// canonical decodes raw with reg and re-encodes it with reg's serializer.
func canonical(reg Registration, raw []byte, id string) (string, error) {
	v, err := reg.Deserializer(raw, id)
	if err != nil {
		return "", err
	}
	return reg.Serializer(v)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
