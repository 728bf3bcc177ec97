package chart

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/adept-charts/internal/form"
	"github.com/yanizio/adept-charts/internal/output"
	"github.com/yanizio/adept-charts/internal/publish"
	"github.com/yanizio/adept-charts/internal/session"
	"github.com/yanizio/adept-charts/internal/widget"
)

type countingRegistry struct {
	*widget.Registry
	regs []widget.Registration
}

func (c *countingRegistry) Register(r widget.Registration) (widget.State, error) {
	c.regs = append(c.regs, r)
	return c.Registry.Register(r)
}

type stubPublisher struct {
	url   string
	err   error
	calls int
	last  publish.Options
}

func (s *stubPublisher) PublishOrFetchCached(_ context.Context, _ []byte, opts publish.Options) (string, error) {
	s.calls++
	s.last = opts
	return s.url, s.err
}

type harness struct {
	reg   *countingRegistry
	tree  *output.Tree
	state *session.State
	r     *Renderer
}

func newHarness(pub Publisher) *harness {
	h := &harness{
		reg:   &countingRegistry{Registry: widget.NewRegistry()},
		tree:  output.NewTree(),
		state: session.NewState(),
	}
	h.r = &Renderer{
		Binder:    &Binder{Registry: h.reg, Sink: h.tree},
		Rules:     session.Rules{State: h.state},
		Publisher: pub,
	}
	h.reg.BeginRun()
	return h
}

// nextRun starts a new cycle with a fresh output tree, keeping widget state.
func (h *harness) nextRun() {
	h.reg.EndRun()
	h.reg.BeginRun()
	h.tree = output.NewTree()
	h.r.Binder.Sink = h.tree
}

func (h *harness) onlySpec(t *testing.T) Spec {
	t.Helper()
	els := h.tree.Elements()
	require.Len(t, els, 1)
	assert.Equal(t, ElementType, els[0].Type)
	spec, ok := els[0].Payload.(Spec)
	require.True(t, ok)
	return spec
}

var bars = map[string]any{"data": []any{map[string]any{"type": "bar", "y": []any{1, 2, 3}}}}

func opts(onSelect any, key string) Options {
	o := DefaultOptions()
	o.OnSelect = onSelect
	o.Key = key
	return o
}

func TestRender_DisabledReturnsHandle(t *testing.T) {
	h := newHarness(nil)

	res, err := h.r.Render(context.Background(), bars, opts(false, "k"))
	require.NoError(t, err)

	assert.Equal(t, ResultHandle, res.Kind())
	handle, ok := res.Handle()
	require.True(t, ok)
	assert.True(t, handle.Valid())
	_, ok = res.Value()
	assert.False(t, ok)

	assert.Empty(t, h.reg.regs)
	spec := h.onlySpec(t)
	assert.False(t, spec.OnSelectEnabled)
	assert.Equal(t, "k", spec.ID)
	require.NotNil(t, spec.Figure)
	assert.Contains(t, spec.Figure.Spec, `"bar"`)
	assert.Equal(t, ThemeStreamlit, spec.Theme)
}

func TestRender_RerunRegistersAndReturnsValue(t *testing.T) {
	h := newHarness(nil)

	res, err := h.r.Render(context.Background(), bars, opts(true, "sel"))
	require.NoError(t, err)

	v, ok := res.Value()
	require.True(t, ok)
	assert.True(t, v.IsEmpty())
	_, ok = res.Handle()
	assert.False(t, ok)

	require.Len(t, h.reg.regs, 1)
	reg := h.reg.regs[0]
	assert.True(t, reg.TriggersRerun)
	assert.Nil(t, reg.Callback)
	assert.Equal(t, "sel", reg.Key)

	spec := h.onlySpec(t)
	assert.True(t, spec.OnSelectEnabled)
	assert.Equal(t, reg.ID, spec.ID)
	assert.True(t, strings.HasPrefix(spec.ID, "$$WIDGET-"))
}

func TestRender_IgnoreTracksWithoutRerun(t *testing.T) {
	h := newHarness(nil)

	res, err := h.r.Render(context.Background(), bars, opts("ignore", ""))
	require.NoError(t, err)
	assert.Equal(t, ResultValue, res.Kind())

	require.Len(t, h.reg.regs, 1)
	assert.False(t, h.reg.regs[0].TriggersRerun)
	assert.Nil(t, h.reg.regs[0].Callback)
	assert.True(t, h.onlySpec(t).OnSelectEnabled)

	rerun, err := h.reg.Apply(h.reg.regs[0].ID, []byte(`{"selection":{"points":[]}}`))
	require.NoError(t, err)
	assert.False(t, rerun)
}

func TestRender_CallbackRunsOncePerChange(t *testing.T) {
	h := newHarness(nil)
	var seen []Value
	handler := func(_ context.Context, v Value) error {
		seen = append(seen, v)
		return nil
	}

	_, err := h.r.Render(context.Background(), bars, opts(handler, "cb"))
	require.NoError(t, err)
	require.Len(t, h.reg.regs, 1)
	id := h.reg.regs[0].ID
	assert.NotNil(t, h.reg.regs[0].Callback)

	rerun, err := h.reg.Apply(id, []byte(`{"selection":{"points":[{"x":1}]}}`))
	require.NoError(t, err)
	assert.True(t, rerun)
	_, err = h.reg.Apply(id, []byte(`{"selection":{"points":[{"x":1}]}}`))
	require.NoError(t, err)

	require.NoError(t, h.reg.RunCallbacks(context.Background()))
	require.Len(t, seen, 1)
	assert.False(t, seen[0].IsEmpty())

	// The next cycle sees the stored selection.
	h.nextRun()
	res, err := h.r.Render(context.Background(), bars, opts(handler, "cb"))
	require.NoError(t, err)
	v, _ := res.Value()
	assert.False(t, v.IsEmpty())
	assert.Len(t, seen, 1)
}

func TestRender_IdentityStableAcrossSessions(t *testing.T) {
	a, b := newHarness(nil), newHarness(nil)

	_, err := a.r.Render(context.Background(), bars, opts(true, "same"))
	require.NoError(t, err)
	_, err = b.r.Render(context.Background(), bars, opts(true, "same"))
	require.NoError(t, err)
	assert.Equal(t, a.reg.regs[0].ID, b.reg.regs[0].ID)

	c := newHarness(nil)
	_, err = c.r.Render(context.Background(), bars, opts(true, "other"))
	require.NoError(t, err)
	assert.NotEqual(t, a.reg.regs[0].ID, c.reg.regs[0].ID)
}

func TestRender_DuplicateWidgetInOneRun(t *testing.T) {
	h := newHarness(nil)

	_, err := h.r.Render(context.Background(), bars, opts(true, "dup"))
	require.NoError(t, err)
	_, err = h.r.Render(context.Background(), bars, opts(true, "dup"))
	assert.ErrorIs(t, err, widget.ErrDuplicateID)
	assert.Equal(t, 1, h.tree.Len())
}

func TestRender_ConfigurationErrorsEmitNothing(t *testing.T) {
	cases := map[string]func(*harness) (context.Context, Options){
		"bad token": func(*harness) (context.Context, Options) {
			return context.Background(), opts("bogus", "")
		},
		"bad theme": func(*harness) (context.Context, Options) {
			o := opts(true, "")
			o.Theme = "dark"
			return context.Background(), o
		},
		"bad sharing": func(*harness) (context.Context, Options) {
			o := opts(nil, "")
			o.Sharing = "friends"
			return context.Background(), o
		},
		"callback in form": func(*harness) (context.Context, Options) {
			return form.With(context.Background(), "f1"), opts(func() {}, "")
		},
		"seeded key": func(h *harness) (context.Context, Options) {
			h.state.Seed("taken", 1)
			return context.Background(), opts(nil, "taken")
		},
		"seeded key with callback": func(h *harness) (context.Context, Options) {
			h.state.Seed("taken", 1)
			return context.Background(), opts(func() {}, "taken")
		},
		"seeded key with rerun": func(h *harness) (context.Context, Options) {
			h.state.Seed("taken", 1)
			return context.Background(), opts(true, "taken")
		},
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(&stubPublisher{url: "https://host/x"})
			ctx, o := setup(h)

			_, err := h.r.Render(ctx, bars, o)
			assert.True(t, IsConfigurationError(err), "got %v", err)
			assert.Zero(t, h.tree.Len())
			assert.Empty(t, h.reg.regs)
		})
	}
}

func TestRender_RerunInsideFormCarriesFormID(t *testing.T) {
	h := newHarness(nil)

	_, err := h.r.Render(form.With(context.Background(), "f1"), bars, opts(true, ""))
	require.NoError(t, err)
	assert.Equal(t, "f1", h.onlySpec(t).FormID)
}

func TestRender_ConversionError(t *testing.T) {
	h := newHarness(nil)

	_, err := h.r.Render(context.Background(), 42, opts(true, ""))
	assert.True(t, IsConversionError(err), "got %v", err)
	assert.Zero(t, h.tree.Len())
	assert.Empty(t, h.reg.regs)
}

func TestRender_InlineConfigDefaults(t *testing.T) {
	h := newHarness(nil)
	o := opts(nil, "")
	o.Config = map[string]any{"displayModeBar": false}

	_, err := h.r.Render(context.Background(), bars, o)
	require.NoError(t, err)
	assert.JSONEq(t, `{"displayModeBar":false,"showLink":false,"linkText":false}`, h.onlySpec(t).Figure.Config)
}

func TestRender_HostedEmbedsURL(t *testing.T) {
	pub := &stubPublisher{url: "https://host/abc?x=1"}
	h := newHarness(pub)
	o := opts(nil, "")
	o.Sharing = "Secret"
	o.Filename = "q3"

	_, err := h.r.Render(context.Background(), bars, o)
	require.NoError(t, err)

	spec := h.onlySpec(t)
	assert.Nil(t, spec.Figure)
	assert.Equal(t, "https://host/abc.embed?x=1", spec.URL)
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, "secret", pub.last.Sharing)
	assert.Equal(t, "q3", pub.last.Filename)
}

func TestRender_PublishFailure(t *testing.T) {
	cause := errors.New("quota")
	h := newHarness(&stubPublisher{err: cause})
	o := opts(true, "")
	o.Sharing = SharingPublic

	_, err := h.r.Render(context.Background(), bars, o)
	assert.True(t, IsPublishError(err))
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, h.tree.Len())
	assert.Empty(t, h.reg.regs)
}

func TestRender_HostedWithoutPublisher(t *testing.T) {
	h := newHarness(nil)
	o := opts(nil, "")
	o.Sharing = SharingPrivate

	_, err := h.r.Render(context.Background(), bars, o)
	assert.ErrorIs(t, err, ErrNoPublisher)
	assert.True(t, IsPublishError(err))
}

func TestBind_RegistryFailureLeavesSinkEmpty(t *testing.T) {
	tree := output.NewTree()
	b := &Binder{Registry: failingRegistry{}, Sink: tree}

	_, err := b.Bind(context.Background(), ModeRerun, Spec{}, "k")
	assert.Error(t, err)
	assert.Zero(t, tree.Len())
}

type failingRegistry struct{}

func (failingRegistry) Register(widget.Registration) (widget.State, error) {
	return widget.State{}, errors.New("registry closed")
}
func (failingRegistry) Value(string) (any, error) { return nil, widget.ErrUnknownWidget }
