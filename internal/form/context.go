// internal/form/context.go
//
// Form grouping for interactive elements.
//
// Context
//   Elements rendered inside a form are submitted together; they carry the
//   owning form's id so the surface can batch them.  The current form id
//   travels in context.Context, so any element constructor can read it
//   without the runner threading it explicitly.  Outside a form the id is
//   the empty string.
//
//------------------------------------------------------------------------------

package form

import "context"

type ctxKey struct{}

// With returns a child context whose current form is id.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Current returns the id of the enclosing form, or "" outside any form.
func Current(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Inside reports whether ctx is within a form.
func Inside(ctx context.Context) bool { return Current(ctx) != "" }
