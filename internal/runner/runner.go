// internal/runner/runner.go
//
// Execution-cycle host.
//
// Workflow
// --------
//  1. Lock the session; one cycle at a time per session.
//  2. Run callbacks queued by selection events since the last cycle.
//  3. BeginRun on the session's widget registry.
//  4. Execute the script top to bottom against a fresh output tree.
//  5. EndRun, dropping widgets the script no longer renders.
//
// Errors
// ------
// Configuration and rule errors are the app author's mistake and show up
// in the tree as an exception element, after whatever rendered before
// them.  Any other script error aborts the cycle and is returned.  Widget
// state is only pruned when the script completes.
package runner

import (
	"context"
	"errors"
	"strconv"

	"github.com/yanizio/adept-charts/internal/chart"
	"github.com/yanizio/adept-charts/internal/logger"
	"github.com/yanizio/adept-charts/internal/metrics"
	"github.com/yanizio/adept-charts/internal/output"
	"github.com/yanizio/adept-charts/internal/session"
	"github.com/yanizio/adept-charts/internal/widget"
)

// Script is one app: it renders elements through the Context.
type Script func(*Context) error

// Exception is the payload of an exception element.
type Exception struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Runner executes scripts for sessions.  Publisher may be nil, in which
// case hosted sharing modes fail.
type Runner struct {
	Publisher chart.Publisher
}

// Run executes one cycle for sess.
func (r *Runner) Run(ctx context.Context, sess *session.Session, script Script) (*output.Tree, error) {
	log := logger.FromContext(ctx).With("session", sess.ID)
	ctx = logger.WithContext(ctx, log)

	var tree *output.Tree
	err := sess.Exclusive(func() error {
		tree = output.NewTree()
		reg := sess.Widgets

		if err := reg.RunCallbacks(ctx); err != nil {
			log.Warnw("selection callback failed", "err", err)
			tree.Enqueue(ExceptionElement, Exception{Kind: "callback", Message: err.Error()})
		}

		reg.BeginRun()
		c := &Context{
			ctx:  ctx,
			sess: sess,
			tree: tree,
			renderer: &chart.Renderer{
				Binder:    &chart.Binder{Registry: reg, Sink: tree},
				Rules:     session.Rules{State: sess.State},
				Publisher: r.Publisher,
			},
		}
		if err := script(c); err != nil {
			kind, ok := authorError(err)
			if !ok {
				return err
			}
			log.Debugw("script raised", "kind", kind, "err", err)
			tree.Enqueue(ExceptionElement, Exception{Kind: kind, Message: err.Error()})
		}
		reg.EndRun()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// Event applies a selection event from the surface.  When the widget
// triggers reruns, the script runs and its tree is returned; otherwise
// the tree is nil.
func (r *Runner) Event(ctx context.Context, sess *session.Session, widgetID string, raw []byte, script Script) (*output.Tree, error) {
	var rerun bool
	err := sess.Exclusive(func() error {
		var err error
		rerun, err = sess.Widgets.Apply(widgetID, raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.WidgetEventsTotal.WithLabelValues(strconv.FormatBool(rerun)).Inc()
	if !rerun {
		return nil, nil
	}
	return r.Run(ctx, sess, script)
}

// authorError classifies errors that render as an exception element.
func authorError(err error) (string, bool) {
	switch {
	case chart.IsConfigurationError(err), session.IsRuleError(err):
		return "configuration", true
	case chart.IsConversionError(err):
		return "conversion", true
	case chart.IsPublishError(err):
		return "publish", true
	case errors.Is(err, ErrNestedForm):
		return "configuration", true
	case errors.Is(err, widget.ErrDuplicateID):
		return "duplicate_widget", true
	}
	return "", false
}
