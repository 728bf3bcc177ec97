// internal/chart/mode.go
//
// Selection-mode resolver.
//
// Context
//   Application code says how a chart reacts to point selection with one
//   loosely typed value: a bool, one of the reserved tokens "rerun" or
//   "ignore", or a handler.  ResolveSelectionMode turns that value into a
//   closed SelectionMode exactly once, at the call boundary, and everything
//   downstream switches on Kind.
//
//      nil, false        → Disabled
//      true, "rerun"     → RerunOnSelect
//      "ignore"          → IgnoreOnSelect
//      handler func      → Callback(handler)
//
//   Anything else is a caller programming error and yields a
//   *ConfigurationError.
//
//------------------------------------------------------------------------------

package chart

import (
	"context"
	"fmt"
)

// Reserved selection tokens.
const (
	SelectRerun  = "rerun"
	SelectIgnore = "ignore"
)

// ModeKind enumerates the selection behaviours.
type ModeKind int

const (
	Disabled ModeKind = iota
	RerunOnSelect
	IgnoreOnSelect
	Callback
)

func (k ModeKind) String() string {
	switch k {
	case Disabled:
		return "disabled"
	case RerunOnSelect:
		return "rerun"
	case IgnoreOnSelect:
		return "ignore"
	case Callback:
		return "callback"
	default:
		return fmt.Sprintf("ModeKind(%d)", int(k))
	}
}

// SelectHandler receives the new selection after the surface reports it.
// It runs before the next execution cycle renders.
type SelectHandler func(ctx context.Context, selection Value) error

// SelectionMode is the resolved selection behaviour of one chart.  Only the
// Callback kind carries a handler.
type SelectionMode struct {
	kind    ModeKind
	handler SelectHandler
}

// ModeDisabled, ModeRerun, and ModeIgnore are the handler-less modes.
var (
	ModeDisabled = SelectionMode{kind: Disabled}
	ModeRerun    = SelectionMode{kind: RerunOnSelect}
	ModeIgnore   = SelectionMode{kind: IgnoreOnSelect}
)

// ModeCallback wraps h.  A nil handler means Disabled, as it does for
// ResolveSelectionMode.
func ModeCallback(h SelectHandler) SelectionMode {
	if h == nil {
		return ModeDisabled
	}
	return SelectionMode{kind: Callback, handler: h}
}

// Kind reports the variant.
func (m SelectionMode) Kind() ModeKind { return m.kind }

// Handler returns the callback for the Callback kind and nil otherwise.
func (m SelectionMode) Handler() SelectHandler { return m.handler }

// Interactive reports whether the chart tracks selection state.
func (m SelectionMode) Interactive() bool { return m.kind != Disabled }

func (m SelectionMode) String() string { return m.kind.String() }

// ResolveSelectionMode normalises the caller-supplied onSelect value.
func ResolveSelectionMode(raw any) (SelectionMode, error) {
	switch v := raw.(type) {
	case nil:
		return ModeDisabled, nil
	case bool:
		if v {
			return ModeRerun, nil
		}
		return ModeDisabled, nil
	case string:
		switch v {
		case SelectRerun:
			return ModeRerun, nil
		case SelectIgnore:
			return ModeIgnore, nil
		}
		return SelectionMode{}, &ConfigurationError{
			Field: "on_select",
			Msg:   fmt.Sprintf("unknown selection token %q, expected %q, %q, a bool, or a handler", v, SelectRerun, SelectIgnore),
		}
	case SelectionMode:
		return v, nil
	case SelectHandler:
		return ModeCallback(v), nil
	case func(context.Context, Value) error:
		return ModeCallback(v), nil
	case func(Value):
		if v == nil {
			return ModeDisabled, nil
		}
		return ModeCallback(func(_ context.Context, sel Value) error { v(sel); return nil }), nil
	case func():
		if v == nil {
			return ModeDisabled, nil
		}
		return ModeCallback(func(context.Context, Value) error { v(); return nil }), nil
	default:
		return SelectionMode{}, &ConfigurationError{
			Field: "on_select",
			Msg:   fmt.Sprintf("unsupported on_select value of type %T", raw),
		}
	}
}
