package orchestrator

import (
	"errors"
	"fmt"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-cropadvice/pkg/renderers/vanilla"
)

// DefaultThemeName names the built-in manifest.
const DefaultThemeName = "cropadvice"

// WithThemeManifest registers manifest with a go-theme registry, which
// validates it, and uses it to resolve renderer configuration. defaultVariant
// applies when a request does not pick one.
func WithThemeManifest(manifest *theme.Manifest, defaultVariant string) Option {
	return func(o *Orchestrator) {
		if manifest == nil {
			o.initialiseErr = errors.New("orchestrator: theme manifest is nil")
			return
		}
		registry := theme.NewRegistry()
		if err := registry.Register(manifest); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: register theme manifest: %w", err)
			return
		}
		o.themeSelector = manifestSelector{manifest: manifest}
		o.defaultTheme = manifest.Name
		o.defaultVariant = strings.TrimSpace(defaultVariant)
	}
}

// WithThemeSelector plugs an arbitrary go-theme selector. Requests name the
// theme through ThemeName, falling back to the configured default.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeFallbacks overrides the partials applied when the selected theme
// does not provide its own template overrides.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = cloneStrings(fallbacks)
	}
}

// DefaultThemeManifest describes the built-in light and dark palettes used by
// the vanilla renderer stylesheet.
func DefaultThemeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"surface": "#f7f8f3",
			"text":    "#1f2a1c",
			"muted":   "#5d6b58",
			"accent":  "#2f7d32",
			"danger":  "#b3261e",
			"border":  "#d5dccf",
		},
		Variants: map[string]theme.Variant{
			"light": {},
			"dark": {
				Tokens: map[string]string{
					"surface": "#161b14",
					"text":    "#e6ede2",
					"muted":   "#9fae98",
					"accent":  "#7bc67e",
					"danger":  "#f2b8b5",
					"border":  "#33402e",
				},
			},
		},
	}
}

func defaultThemeFallbacks() map[string]string {
	return map[string]string{
		vanilla.TemplateReport: vanilla.TemplateReport,
		vanilla.TemplateUpload: vanilla.TemplateUpload,
		vanilla.TemplateBlocks: vanilla.TemplateBlocks,
	}
}

// manifestSelector resolves selections against a single manifest. Unknown
// variants fall back to the base tokens.
type manifestSelector struct {
	manifest *theme.Manifest
}

func (s manifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name != "" && name != s.manifest.Name {
		return nil, fmt.Errorf("orchestrator: theme %q not registered", name)
	}
	return &theme.Selection{
		Theme:    s.manifest.Name,
		Variant:  variant,
		Manifest: s.manifest,
	}, nil
}

// ThemeConfig resolves the renderer configuration for a theme/variant pair
// using the configured selector. It returns nil when no selector is set.
func (o *Orchestrator) ThemeConfig(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	if strings.TrimSpace(name) == "" {
		name = o.defaultTheme
	}
	if strings.TrimSpace(variant) == "" {
		variant = o.defaultVariant
	}

	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	if selection == nil || selection.Manifest == nil {
		return nil, errors.New("orchestrator: theme selection is empty")
	}
	return rendererConfig(selection, o.fallbacks()), nil
}

func (o *Orchestrator) fallbacks() map[string]string {
	if o.themeFallbacks != nil {
		return o.themeFallbacks
	}
	return defaultThemeFallbacks()
}

func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	manifest := selection.Manifest
	variant, hasVariant := manifest.Variants[selection.Variant]

	tokens := cloneStrings(manifest.Tokens)
	partials := cloneStrings(fallbacks)
	for key, value := range manifest.Templates {
		partials = setString(partials, key, value)
	}
	assets := cloneStrings(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix

	if hasVariant {
		for key, value := range variant.Tokens {
			tokens = setString(tokens, key, value)
		}
		for key, value := range variant.Templates {
			partials = setString(partials, key, value)
		}
		for key, value := range variant.Assets.Files {
			assets = setString(assets, key, value)
		}
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	themeName := selection.Theme
	if themeName == "" {
		themeName = manifest.Name
	}

	return &theme.RendererConfig{
		Theme:    themeName,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := assets[key]
			if !ok || file == "" {
				return ""
			}
			if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
				return file
			}
			if prefix == "" {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

func cloneStrings(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func setString(dst map[string]string, key, value string) map[string]string {
	if dst == nil {
		dst = make(map[string]string)
	}
	dst[key] = value
	return dst
}
