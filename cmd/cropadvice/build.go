package main

import (
	"context"
	"fmt"

	"github.com/goliatone/go-cropadvice/internal/config"
	"github.com/goliatone/go-cropadvice/pkg/classifier"
	"github.com/goliatone/go-cropadvice/pkg/contract"
	"github.com/goliatone/go-cropadvice/pkg/history"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/orchestrator"
	"github.com/goliatone/go-cropadvice/pkg/render"
	"github.com/goliatone/go-cropadvice/pkg/renderers/blockjson"
	"github.com/goliatone/go-cropadvice/pkg/renderers/markdown"
	"github.com/goliatone/go-cropadvice/pkg/renderers/terminal"
	"github.com/goliatone/go-cropadvice/pkg/renderers/vanilla"
)

// newClassifier picks the engine client or the offline fixtures.
func newClassifier(ctx context.Context, cfg *config.Config, offline bool) (classifier.Classifier, error) {
	if offline || cfg.Classifier.Mode == config.ModeStatic {
		if cfg.Classifier.Fixtures == "" {
			return classifier.DefaultStatic(), nil
		}
		return classifier.LoadFixtures(cfg.Classifier.Fixtures)
	}

	spec, err := contract.Load(ctx)
	if err != nil {
		return nil, err
	}
	return classifier.NewHTTPClient(cfg.Classifier.Endpoint,
		classifier.WithTimeout(cfg.Classifier.Timeout),
		classifier.WithContract(spec),
	)
}

// newVanilla builds the HTML renderer. Pages written to disk inline the
// stylesheet; the server links the copy it serves under /assets/.
func newVanilla(cfg *config.Config, extra ...vanilla.Option) (*vanilla.Renderer, error) {
	options := append([]vanilla.Option{vanilla.WithTemplatesDir(cfg.Render.TemplatesDir)}, extra...)
	return vanilla.New(options...)
}

func vanillaStylesheetOption() vanilla.Option {
	return vanilla.WithStylesheet("/assets/" + vanilla.StylesheetName)
}

func newRegistry(page *vanilla.Renderer, termOpts ...terminal.Option) *render.Registry {
	return render.NewRegistry(
		page,
		terminal.New(termOpts...),
		markdown.New(),
		blockjson.New(),
	)
}

func openHistory(ctx context.Context, cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled() {
		return nil, nil
	}
	store, err := history.Open(ctx, cfg.History.DSN)
	if err != nil {
		return nil, err
	}
	return store, nil
}

type pipelineOptions struct {
	classifier classifier.Classifier
	registry   *render.Registry
	history    *history.Store
	catalogue  *model.Catalogue
}

func (a *app) newOrchestrator(opts pipelineOptions) *orchestrator.Orchestrator {
	builderOpts := []model.BuilderOption{}
	if opts.catalogue != nil {
		builderOpts = append(builderOpts, model.WithCatalogue(opts.catalogue))
	}

	options := []orchestrator.Option{
		orchestrator.WithModelBuilder(model.NewBuilder(builderOpts...)),
		orchestrator.WithRegistry(opts.registry),
		orchestrator.WithDefaultRenderer(a.cfg.Render.DefaultRenderer),
		orchestrator.WithThemeManifest(orchestrator.DefaultThemeManifest(), a.cfg.Render.ThemeVariant),
		orchestrator.WithLogger(a.logger),
	}
	if opts.classifier != nil {
		options = append(options, orchestrator.WithClassifier(opts.classifier))
	}
	if opts.history != nil {
		options = append(options, orchestrator.WithHistory(opts.history))
	}
	return orchestrator.New(options...)
}

func requireRenderer(registry *render.Registry, name string) error {
	if name == "" || registry.Has(name) {
		return nil
	}
	return fmt.Errorf("unknown renderer %q (available: %v)", name, registry.List())
}
