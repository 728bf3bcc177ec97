package runner

import (
	"context"
	"errors"

	"github.com/yanizio/adept-charts/internal/chart"
	"github.com/yanizio/adept-charts/internal/form"
	"github.com/yanizio/adept-charts/internal/output"
	"github.com/yanizio/adept-charts/internal/session"
)

// Element tags emitted by the runner itself.
const (
	TextElement      = "markdown"
	FormElement      = "form"
	ExceptionElement = "exception"
)

// ErrNestedForm is returned by Form when called inside another form.
var ErrNestedForm = errors.New("forms cannot be nested")

// Context is what a Script sees during one execution cycle.
type Context struct {
	ctx      context.Context
	sess     *session.Session
	tree     *output.Tree
	renderer *chart.Renderer
}

// Context returns the cycle's context.Context.
func (c *Context) Context() context.Context { return c.ctx }

// SessionID identifies the browser session running the script.
func (c *Context) SessionID() string { return c.sess.ID }

// State exposes the session's user-seeded values.
func (c *Context) State() *session.State { return c.sess.State }

// Chart renders one chart.  See chart.Renderer.Render.
func (c *Context) Chart(figureOrData any, opts chart.Options) (chart.Result, error) {
	return c.renderer.Render(c.ctx, figureOrData, opts)
}

// Text emits a markdown element.
func (c *Context) Text(md string) output.Handle {
	return c.tree.Enqueue(TextElement, map[string]string{"body": md})
}

// Form runs fn with every element it renders grouped under form id.
func (c *Context) Form(id string, fn func(*Context) error) error {
	if form.Inside(c.ctx) {
		return ErrNestedForm
	}
	if id == "" {
		return errors.New("form id must be non-empty")
	}
	c.tree.Enqueue(FormElement, map[string]string{"formId": id})
	inner := *c
	inner.ctx = form.With(c.ctx, id)
	return fn(&inner)
}
