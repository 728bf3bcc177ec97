// internal/chart/bind.go
//
// Widget binding.
//
// Workflow
//   1. Disabled mode: enqueue the element and return its handle.  Nothing
//      is registered.
//   2. Any other mode: compute the widget id from the element content and
//      the caller key, register with the session registry (callback only
//      for Callback mode, rerun flag off for Ignore), enqueue the element,
//      and return the tracked value.
//
//   The element always goes to the sink with onSelectEnabled = mode is not
//   Disabled.  A registration failure leaves the sink untouched.
//
//------------------------------------------------------------------------------

package chart

import (
	"context"
	"fmt"

	"github.com/yanizio/adept-charts/internal/metrics"
	"github.com/yanizio/adept-charts/internal/output"
	"github.com/yanizio/adept-charts/internal/widget"
)

// Registry is the slice of widget.Registry the binder needs.
type Registry interface {
	Register(reg widget.Registration) (widget.State, error)
	Value(id string) (any, error)
}

// Sink receives rendered elements in order.
type Sink interface {
	Enqueue(tag string, payload any) output.Handle
}

// Binder connects chart elements to one session's registry and output.
type Binder struct {
	Registry Registry
	Sink     Sink
}

// Bind emits spec and, for interactive modes, registers it as a widget.
func (b *Binder) Bind(ctx context.Context, mode SelectionMode, spec Spec, key string) (Result, error) {
	spec.OnSelectEnabled = mode.Interactive()

	if !mode.Interactive() {
		spec.ID = key
		return handleResult(b.Sink.Enqueue(ElementType, spec)), nil
	}
	if b.Registry == nil {
		return Result{}, fmt.Errorf("chart: interactive chart %q without a widget registry", key)
	}

	content, err := spec.identity()
	if err != nil {
		return Result{}, fmt.Errorf("chart: widget identity: %w", err)
	}
	id := widget.ComputeID(widgetDiscriminator, content, key)

	reg := widget.Registration{
		ElementType:   widgetDiscriminator,
		ID:            id,
		Key:           key,
		Serializer:    SerializeValue,
		Deserializer:  DeserializeValue,
		TriggersRerun: mode.Kind() != IgnoreOnSelect,
	}
	if mode.Kind() == Callback {
		reg.Callback = b.callback(id, mode.Handler())
	}

	state, err := b.Registry.Register(reg)
	if err != nil {
		return Result{}, err
	}
	metrics.WidgetsRegisteredTotal.Inc()

	val, ok := state.Value.(Value)
	if !ok {
		val = Empty()
	}

	spec.ID = id
	b.Sink.Enqueue(ElementType, spec)
	return valueResult(val), nil
}

// callback adapts h to the registry's callback shape by reading the stored
// selection at invocation time.
func (b *Binder) callback(id string, h SelectHandler) widget.Callback {
	return func(ctx context.Context) error {
		raw, err := b.Registry.Value(id)
		if err != nil {
			return err
		}
		sel, ok := raw.(Value)
		if !ok {
			sel = Empty()
		}
		return h(ctx, sel)
	}
}
