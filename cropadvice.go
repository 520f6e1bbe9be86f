// Package cropadvice turns crop disease classification results into
// structured advice and renders it as HTML, terminal text, markdown or JSON.
//
// Most callers only need RenderResult or an Orchestrator:
//
//	html, err := cropadvice.RenderResult(ctx, result, "vanilla")
package cropadvice

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/orchestrator"
	"github.com/goliatone/go-cropadvice/pkg/render"
)

// RenderOptions describes per-request overrides such as the page title or
// the analysed image.
type RenderOptions = render.RenderOptions

// ClassificationResult is the engine's prediction payload.
type ClassificationResult = model.ClassificationResult

// Report is a result together with its parsed advice blocks.
type Report = model.Report

// Block is one structural element of parsed advice.
type Block = advice.Block

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// ParseAdvice splits the engine's advice text into blocks.
func ParseAdvice(text string) []Block {
	return advice.Parse(text)
}

// RenderResult builds a report for result and renders it with the named
// renderer. An empty name picks the vanilla HTML renderer.
func RenderResult(ctx context.Context, result ClassificationResult, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	outcome, err := gen.Render(ctx, orchestrator.RenderRequest{
		Result:   result,
		Renderer: rendererName,
	})
	if err != nil {
		return nil, err
	}
	return outcome.Output, nil
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemeManifest registers a go-theme manifest with the orchestrator so
// renderers receive resolved partials, tokens, and assets.
func WithThemeManifest(manifest *theme.Manifest, defaultVariant string) orchestrator.Option {
	return orchestrator.WithThemeManifest(manifest, defaultVariant)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
