package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/render"
	rendertemplate "github.com/goliatone/go-cropadvice/pkg/render/template"
	"github.com/goliatone/go-cropadvice/pkg/render/template/gotemplate"
)

// Name is the registry key of the HTML renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheet       string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide the same paths as TemplatesFS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet links an external stylesheet instead of inlining the
// embedded one.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = strings.TrimSpace(href)
	}
}

// Renderer produces standalone HTML pages for reports and the upload form.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	stylesheet string
	inlineCSS  string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:  renderer,
		stylesheet: cfg.stylesheet,
		inlineCSS:  defaultStylesheet(),
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the results page: crop and disease cards, the analysed image
// when one is supplied, and the advice blocks.
func (r *Renderer) Render(ctx context.Context, report model.Report, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fragment, err := r.RenderBlocks(report.Blocks, opts.Theme)
	if err != nil {
		return nil, err
	}

	data := r.pageData(reportTitle(opts.Title, report.Result), opts.Theme)
	data["report"] = report
	data["confidence"] = report.Result.ConfidencePercent()
	data["healthy"] = report.Result.Healthy()
	data["advice_html"] = fragment
	data["image_url"] = strings.TrimSpace(opts.ImageURL)
	data["image_alt"] = imageAlt(opts.ImageAlt, report.Result)
	data["back_url"] = opts.BackLink()

	result, err := r.templates.RenderTemplate(templatePath(opts.Theme, TemplateReport), data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// RenderBlocks renders advice blocks as a sanitised HTML fragment. Headings
// shift down one level so the page title keeps h1.
func (r *Renderer) RenderBlocks(blocks []advice.Block, cfg *theme.RendererConfig) (string, error) {
	if len(blocks) == 0 {
		return "", nil
	}
	raw, err := r.templates.RenderTemplate(templatePath(cfg, TemplateBlocks), map[string]any{
		"blocks":  blocks,
		"classes": chromeClasses(),
	})
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: render blocks: %w", err)
	}
	return sanitizeAdvice(raw), nil
}

// UploadPage describes the upload form.
type UploadPage struct {
	Title string
	// Action is the form target. Defaults to "/analyze".
	Action string
	// Crops lists the selectable crops in display order.
	Crops []string
	// Selected preselects a crop.
	Selected string
	// Error is shown above the form, typically after a rejected upload.
	Error string
	// MaxUploadBytes is shown as a size hint when positive.
	MaxUploadBytes int64
	Theme          *theme.RendererConfig
}

// RenderUpload writes the image upload page.
func (r *Renderer) RenderUpload(ctx context.Context, page UploadPage) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(page.Title)
	if title == "" {
		title = defaultTitle
	}
	action := strings.TrimSpace(page.Action)
	if action == "" {
		action = "/analyze"
	}

	data := r.pageData(title, page.Theme)
	data["action"] = action
	data["crops"] = page.Crops
	data["selected"] = page.Selected
	data["error"] = strings.TrimSpace(page.Error)
	if page.MaxUploadBytes > 0 {
		data["max_upload"] = humanize.IBytes(uint64(page.MaxUploadBytes))
	}

	result, err := r.templates.RenderTemplate(templatePath(page.Theme, TemplateUpload), data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render upload template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) pageData(title string, cfg *theme.RendererConfig) map[string]any {
	data := map[string]any{
		"title":         title,
		"classes":       chromeClasses(),
		"theme_name":    themeName(cfg),
		"theme_variant": themeVariant(cfg),
		"theme_css":     cssDeclarations(cfg),
	}

	switch href := themeAssetURL(cfg, StylesheetAssetKey); {
	case r.stylesheet != "":
		data["stylesheet"] = r.stylesheet
	case href != "":
		data["stylesheet"] = href
	default:
		data["inline_css"] = r.inlineCSS
	}
	return data
}

func imageAlt(explicit string, result model.ClassificationResult) string {
	if alt := strings.TrimSpace(explicit); alt != "" {
		return alt
	}
	if crop := strings.TrimSpace(result.Crop); crop != "" {
		return "Analysed " + strings.ToLower(crop) + " leaf"
	}
	return "Analysed leaf"
}
