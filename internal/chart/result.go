package chart

import "github.com/yanizio/adept-charts/internal/output"

// ResultKind distinguishes the two outcomes of Render.
type ResultKind int

const (
	ResultHandle ResultKind = iota // non-interactive: a handle on the element
	ResultValue                    // interactive: the tracked selection
)

// Result is what Render returns: an output handle when selection is
// disabled, otherwise the tracked selection value.  Never both.
type Result struct {
	kind   ResultKind
	handle output.Handle
	value  Value
}

func handleResult(h output.Handle) Result { return Result{kind: ResultHandle, handle: h} }
func valueResult(v Value) Result          { return Result{kind: ResultValue, value: v} }

// Kind reports which variant r holds.
func (r Result) Kind() ResultKind { return r.kind }

// Handle returns the element handle of a non-interactive chart.
func (r Result) Handle() (output.Handle, bool) {
	return r.handle, r.kind == ResultHandle
}

// Value returns the tracked selection of an interactive chart.
func (r Result) Value() (Value, bool) {
	return r.value, r.kind == ResultValue
}
