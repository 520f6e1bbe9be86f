package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-cropadvice/pkg/classifier"
	"github.com/goliatone/go-cropadvice/pkg/history"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/render"
	"github.com/goliatone/go-cropadvice/pkg/renderers/blockjson"
	"github.com/goliatone/go-cropadvice/pkg/renderers/markdown"
	"github.com/goliatone/go-cropadvice/pkg/renderers/terminal"
	"github.com/goliatone/go-cropadvice/pkg/renderers/vanilla"
)

const defaultRendererName = vanilla.Name

var (
	// ErrClassifierRequired is returned by Analyze when no classifier is wired.
	ErrClassifierRequired = errors.New("orchestrator: classifier is required")
	// ErrClassify wraps every classifier failure so callers can tell engine
	// problems from build and render errors.
	ErrClassify = errors.New("orchestrator: classify")
)

// Recorder persists classification results. history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (history.Entry, error)
}

var _ Recorder = (*history.Store)(nil)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithClassifier injects the classification engine client.
func WithClassifier(c classifier.Classifier) Option {
	return func(o *Orchestrator) {
		o.classifier = c
	}
}

// WithModelBuilder injects a custom report builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that runs on every result before
// the report is built.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.transformers = append(o.transformers, t)
		}
	}
}

// WithHistory records every successful classification.
func WithHistory(recorder Recorder) Option {
	return func(o *Orchestrator) {
		o.history = recorder
	}
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates classifier → report builder → renderer. It
// applies defaults (the plain report builder, the four built-in renderers)
// while remaining open to dependency injection.
type Orchestrator struct {
	classifier      classifier.Classifier
	builder         model.Builder
	registry        *render.Registry
	defaultRenderer string
	transformers    []Transformer
	history         Recorder
	logger          *zap.Logger
	themeSelector   theme.ThemeSelector
	themeFallbacks  map[string]string
	defaultTheme    string
	defaultVariant  string
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// DefaultRegistry returns a registry holding the vanilla, terminal, markdown
// and blockjson renderers.
func DefaultRegistry(vanillaOptions ...vanilla.Option) (*render.Registry, error) {
	page, err := vanilla.New(vanillaOptions...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: default renderer: %w", err)
	}
	return render.NewRegistry(
		page,
		terminal.New(),
		markdown.New(),
		blockjson.New(),
	), nil
}

// AnalyzeRequest describes an image to classify and how to render it.
type AnalyzeRequest struct {
	Crop        string
	Filename    string
	ContentType string
	Image       io.Reader

	// Renderer names the renderer to use. Empty picks the default.
	Renderer      string
	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant select theme configuration when a theme is
	// wired and RenderOptions.Theme is unset.
	ThemeName    string
	ThemeVariant string

	// RequestID is stored alongside history entries.
	RequestID string
}

// RenderRequest renders an existing result without classification.
type RenderRequest struct {
	Result        model.ClassificationResult
	Renderer      string
	RenderOptions render.RenderOptions
	ThemeName     string
	ThemeVariant  string
}

// Outcome is the result of a pipeline run.
type Outcome struct {
	Report      model.Report
	Output      []byte
	ContentType string
	Renderer    string
	// HistoryID is set when the result was recorded.
	HistoryID string
}

// Analyze classifies the image, records the result, builds the report and
// renders it.
func (o *Orchestrator) Analyze(ctx context.Context, req AnalyzeRequest) (Outcome, error) {
	if err := o.ready(ctx); err != nil {
		return Outcome{}, err
	}
	if o.classifier == nil {
		return Outcome{}, ErrClassifierRequired
	}

	// resolve the renderer first so a bad name never costs a classification
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return Outcome{}, err
	}

	started := time.Now()
	result, err := o.classifier.Classify(ctx, classifier.Request{
		Crop:        req.Crop,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Image:       req.Image,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", ErrClassify, err)
	}
	o.logger.Debug("classified image",
		zap.String("crop", result.Crop),
		zap.String("disease", result.Disease),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("elapsed", time.Since(started)),
		zap.String("request_id", req.RequestID),
	)

	if err := o.applyTransformers(ctx, &result); err != nil {
		return Outcome{}, err
	}

	historyID := o.record(ctx, history.Entry{
		Filename:  req.Filename,
		RequestID: req.RequestID,
		Result:    result,
	})

	outcome, err := o.render(ctx, renderer, result, req.RenderOptions, req.ThemeName, req.ThemeVariant)
	if err != nil {
		return Outcome{}, err
	}
	outcome.HistoryID = historyID
	return outcome, nil
}

// Render builds and renders an existing result.
func (o *Orchestrator) Render(ctx context.Context, req RenderRequest) (Outcome, error) {
	if err := o.ready(ctx); err != nil {
		return Outcome{}, err
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return Outcome{}, err
	}
	result := req.Result
	if err := o.applyTransformers(ctx, &result); err != nil {
		return Outcome{}, err
	}
	return o.render(ctx, renderer, result, req.RenderOptions, req.ThemeName, req.ThemeVariant)
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Builder exposes the report builder.
func (o *Orchestrator) Builder() model.Builder {
	return o.builder
}

func (o *Orchestrator) render(ctx context.Context, renderer render.Renderer, result model.ClassificationResult, opts render.RenderOptions, themeName, themeVariant string) (Outcome, error) {
	report, err := o.builder.Build(result)
	if err != nil {
		return Outcome{}, fmt.Errorf("orchestrator: build report: %w", err)
	}

	if opts.Theme == nil {
		cfg, err := o.ThemeConfig(themeName, themeVariant)
		if err != nil {
			return Outcome{}, err
		}
		opts.Theme = cfg
	}

	output, err := renderer.Render(ctx, report, opts)
	if err != nil {
		return Outcome{}, fmt.Errorf("orchestrator: render output: %w", err)
	}

	return Outcome{
		Report:      report,
		Output:      output,
		ContentType: renderer.ContentType(),
		Renderer:    renderer.Name(),
	}, nil
}

func (o *Orchestrator) record(ctx context.Context, entry history.Entry) string {
	if o.history == nil {
		return ""
	}
	stored, err := o.history.Record(ctx, entry)
	if err != nil {
		o.logger.Warn("record analysis failed",
			zap.Error(err),
			zap.String("request_id", entry.RequestID),
		)
		return ""
	}
	return stored.ID
}

func (o *Orchestrator) applyTransformers(ctx context.Context, result *model.ClassificationResult) error {
	for _, transformer := range o.transformers {
		if err := transformer.Transform(ctx, result); err != nil {
			return fmt.Errorf("orchestrator: transform result: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
	}
	return o.initialiseErr
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.registry == nil {
		registry, err := DefaultRegistry()
		if err != nil {
			o.initialiseErr = err
			o.registry = render.NewRegistry()
		} else {
			o.registry = registry
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	o.defaultsApplied = true
}
