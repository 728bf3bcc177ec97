// internal/chart/render.go
//
// Render: the public chart operation.
//
// Workflow
//   1. Check theme and sharing mode.
//   2. Resolve onSelect into a SelectionMode.
//   3. Rule checks: callback rules for Callback mode, session-state rules
//      always.
//   4. Convert the input into a figure document.
//   5. Inline: embed the document and surface config.  Hosted: publish (or
//      reuse the cached URL) and embed the .embed URL.
//   6. Bind: emit and, for interactive modes, register.
//
//   Steps 1–5 fail without touching the registry or the sink.
//
//------------------------------------------------------------------------------

package chart

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/yanizio/adept-charts/internal/figure"
	"github.com/yanizio/adept-charts/internal/form"
	"github.com/yanizio/adept-charts/internal/logger"
	"github.com/yanizio/adept-charts/internal/metrics"
	"github.com/yanizio/adept-charts/internal/publish"
)

// RuleChecker vets element declarations against session state.
type RuleChecker interface {
	CheckCallbackRules(ctx context.Context, hasCallback bool) error
	CheckSessionStateRules(element, key string, writesAllowed bool) error
}

// Publisher hosts figure documents remotely.
type Publisher interface {
	PublishOrFetchCached(ctx context.Context, figure []byte, opts publish.Options) (string, error)
}

// ErrNoPublisher is wrapped in a PublishError when a hosted sharing mode is
// requested and no publisher is configured.
var ErrNoPublisher = errors.New("no chart host configured")

// Renderer renders charts for one execution cycle.
type Renderer struct {
	Binder    *Binder
	Rules     RuleChecker // optional
	Publisher Publisher   // optional; hosted modes fail without it
}

// Render converts figureOrData and emits a chart element.  It returns the
// element handle when selection is disabled and the tracked selection
// otherwise.
func (r *Renderer) Render(ctx context.Context, figureOrData any, opts Options) (Result, error) {
	log := logger.FromContext(ctx)

	if err := opts.Theme.validate(); err != nil {
		return Result{}, err
	}
	sharing, err := ParseSharingMode(string(opts.Sharing))
	if err != nil {
		return Result{}, err
	}

	mode, err := r.resolve(ctx, opts.OnSelect)
	if err != nil {
		return Result{}, err
	}
	if r.Rules != nil {
		if err := r.Rules.CheckSessionStateRules(ElementType, opts.Key, false); err != nil {
			return Result{}, &ConfigurationError{Field: "key", Msg: err.Error(), Err: err}
		}
	}

	fig, err := figure.Convert(figureOrData)
	if err != nil {
		return Result{}, &ConversionError{Err: err}
	}
	doc, err := fig.JSON()
	if err != nil {
		return Result{}, &ConversionError{Err: err}
	}

	spec := Spec{
		Theme:             opts.Theme,
		UseContainerWidth: opts.UseContainerWidth,
		FormID:            form.Current(ctx),
	}
	if sharing.Hosted() {
		spec.URL, err = r.publish(ctx, log, doc, sharing, opts)
		if err != nil {
			return Result{}, err
		}
	} else {
		cfg, err := json.Marshal(opts.surfaceConfig())
		if err != nil {
			return Result{}, &ConversionError{Err: err}
		}
		spec.Figure = &InlineFigure{Spec: string(doc), Config: string(cfg)}
	}

	res, err := r.Binder.Bind(ctx, mode, spec, opts.Key)
	if err != nil {
		return Result{}, err
	}
	metrics.ChartsRenderedTotal.WithLabelValues(mode.String()).Inc()
	return res, nil
}

// resolve runs ResolveSelectionMode and, for handlers, the callback rules.
func (r *Renderer) resolve(ctx context.Context, raw any) (SelectionMode, error) {
	mode, err := ResolveSelectionMode(raw)
	if err != nil {
		return SelectionMode{}, err
	}
	if mode.Kind() == Callback && r.Rules != nil {
		if err := r.Rules.CheckCallbackRules(ctx, true); err != nil {
			return SelectionMode{}, &ConfigurationError{Field: "on_select", Msg: err.Error(), Err: err}
		}
	}
	return mode, nil
}

func (r *Renderer) publish(ctx context.Context, log *zap.SugaredLogger, doc []byte, sharing SharingMode, opts Options) (string, error) {
	if r.Publisher == nil {
		return "", &PublishError{Err: ErrNoPublisher}
	}
	popts := publish.Options{
		Sharing:  string(sharing),
		Filename: opts.Filename,
		Extra:    opts.PublishExtra,
	}
	url, err := r.Publisher.PublishOrFetchCached(ctx, doc, popts)
	if err != nil {
		log.Warnw("chart publish failed", "sharing", sharing, "err", err)
		return "", &PublishError{Err: err}
	}
	embed, err := publish.EmbedURL(url)
	if err != nil {
		return "", &PublishError{Err: err}
	}
	log.Debugw("chart hosted", "sharing", sharing, "url", embed)
	return embed, nil
}
