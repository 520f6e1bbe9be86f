package vanilla

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-cropadvice/pkg/model"
)

const defaultTitle = "Crop Advice"

// reportTitle picks the page heading: explicit title, then "<disease> in
// <crop>", then the generic default.
func reportTitle(explicit string, result model.ClassificationResult) string {
	if title := strings.TrimSpace(explicit); title != "" {
		return title
	}
	crop := strings.TrimSpace(result.Crop)
	disease := strings.TrimSpace(result.Disease)
	switch {
	case crop != "" && disease != "":
		return disease + " in " + crop
	case crop != "":
		return crop
	default:
		return defaultTitle
	}
}

// cssDeclarations renders theme CSS variables as sorted declarations so the
// output is stable across runs.
func cssDeclarations(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	names := make([]string, 0, len(cfg.CSSVars))
	for name := range cfg.CSSVars {
		if isCSSIdent(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		value := sanitizeCSSValue(cfg.CSSVars[name])
		if value == "" {
			continue
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

func isCSSIdent(name string) bool {
	if !strings.HasPrefix(name, "--") || len(name) == 2 {
		return false
	}
	for _, r := range name[2:] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// sanitizeCSSValue drops characters that could close the declaration or the
// surrounding style element.
func sanitizeCSSValue(value string) string {
	value = strings.TrimSpace(value)
	if strings.ContainsAny(value, ";{}<>\\") {
		return ""
	}
	return value
}

// templatePath resolves a template key against theme partial overrides.
func templatePath(cfg *theme.RendererConfig, key string) string {
	if cfg != nil {
		if override := strings.TrimSpace(cfg.Partials[key]); override != "" {
			return override
		}
	}
	return key
}

func themeAssetURL(cfg *theme.RendererConfig, key string) string {
	if cfg == nil || cfg.AssetURL == nil {
		return ""
	}
	return strings.TrimSpace(cfg.AssetURL(key))
}

func themeName(cfg *theme.RendererConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Theme
}

func themeVariant(cfg *theme.RendererConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Variant
}
