package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/adept-charts/internal/chart"
	"github.com/yanizio/adept-charts/internal/output"
	"github.com/yanizio/adept-charts/internal/session"
)

var line = []map[string]any{{"type": "scatter", "y": []any{1, 4, 9}}}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	m := session.NewManager(time.Hour)
	t.Cleanup(m.Close)
	return m.Create()
}

func chartIDs(tree *output.Tree) []string {
	var ids []string
	for _, el := range tree.Elements() {
		if spec, ok := el.Payload.(chart.Spec); ok {
			ids = append(ids, spec.ID)
		}
	}
	return ids
}

func TestRun_RendersInOrder(t *testing.T) {
	sess := newSession(t)
	r := &Runner{}

	tree, err := r.Run(context.Background(), sess, func(c *Context) error {
		c.Text("# Sales")
		_, err := c.Chart(line, chart.DefaultOptions())
		return err
	})
	require.NoError(t, err)

	els := tree.Elements()
	require.Len(t, els, 2)
	assert.Equal(t, TextElement, els[0].Type)
	assert.Equal(t, chart.ElementType, els[1].Type)
}

func TestRun_SelectionFlowsIntoNextCycle(t *testing.T) {
	sess := newSession(t)
	r := &Runner{}
	var last chart.Value
	script := func(c *Context) error {
		o := chart.DefaultOptions()
		o.OnSelect = "rerun"
		o.Key = "picker"
		res, err := c.Chart(line, o)
		if err != nil {
			return err
		}
		last, _ = res.Value()
		return nil
	}

	tree, err := r.Run(context.Background(), sess, script)
	require.NoError(t, err)
	assert.True(t, last.IsEmpty())
	ids := chartIDs(tree)
	require.Len(t, ids, 1)

	tree, err = r.Event(context.Background(), sess, ids[0], []byte(`{"selection":{"points":[{"x":2}]}}`), script)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.False(t, last.IsEmpty())
}

func TestEvent_IgnoreModeDoesNotRerun(t *testing.T) {
	sess := newSession(t)
	r := &Runner{}
	runs := 0
	script := func(c *Context) error {
		runs++
		o := chart.DefaultOptions()
		o.OnSelect = "ignore"
		_, err := c.Chart(line, o)
		return err
	}

	tree, err := r.Run(context.Background(), sess, script)
	require.NoError(t, err)
	id := chartIDs(tree)[0]

	tree, err = r.Event(context.Background(), sess, id, []byte(`{"selection":{}}`), script)
	require.NoError(t, err)
	assert.Nil(t, tree)
	assert.Equal(t, 1, runs)

	v, err := sess.Widgets.Value(id)
	require.NoError(t, err)
	assert.False(t, v.(chart.Value).IsEmpty())
}

func TestRun_CallbackBeforeScript(t *testing.T) {
	sess := newSession(t)
	r := &Runner{}
	var order []string
	script := func(c *Context) error {
		order = append(order, "script")
		o := chart.DefaultOptions()
		o.OnSelect = func(chart.Value) { order = append(order, "callback") }
		_, err := c.Chart(line, o)
		return err
	}

	tree, err := r.Run(context.Background(), sess, script)
	require.NoError(t, err)
	_, err = r.Event(context.Background(), sess, chartIDs(tree)[0], []byte(`{"selection":{"points":[]}}`), script)
	require.NoError(t, err)

	assert.Equal(t, []string{"script", "callback", "script"}, order)
}

func TestRun_ConfigurationErrorBecomesException(t *testing.T) {
	sess := newSession(t)
	r := &Runner{}

	tree, err := r.Run(context.Background(), sess, func(c *Context) error {
		c.Text("before")
		return c.Form("f", func(c *Context) error {
			o := chart.DefaultOptions()
			o.OnSelect = func() {}
			_, err := c.Chart(line, o)
			return err
		})
	})
	require.NoError(t, err)

	els := tree.Elements()
	require.Len(t, els, 3)
	assert.Equal(t, FormElement, els[1].Type)
	assert.Equal(t, ExceptionElement, els[2].Type)
	assert.Equal(t, "configuration", els[2].Payload.(Exception).Kind)
	assert.Empty(t, chartIDs(tree))
}

func TestRun_OtherErrorsAbort(t *testing.T) {
	sess := newSession(t)
	boom := errors.New("boom")

	_, err := (&Runner{}).Run(context.Background(), sess, func(*Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestForm_RejectsNesting(t *testing.T) {
	sess := newSession(t)
	var nested error

	_, err := (&Runner{}).Run(context.Background(), sess, func(c *Context) error {
		return c.Form("outer", func(c *Context) error {
			nested = c.Form("inner", func(*Context) error { return nil })
			return nil
		})
	})
	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrNestedForm)
}

func TestRun_DropsWidgetsNoLongerRendered(t *testing.T) {
	sess := newSession(t)
	r := &Runner{}
	show := true
	script := func(c *Context) error {
		if !show {
			return nil
		}
		o := chart.DefaultOptions()
		o.OnSelect = true
		_, err := c.Chart(line, o)
		return err
	}

	_, err := r.Run(context.Background(), sess, script)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Widgets.Len())

	show = false
	_, err = r.Run(context.Background(), sess, script)
	require.NoError(t, err)
	assert.Zero(t, sess.Widgets.Len())
}
