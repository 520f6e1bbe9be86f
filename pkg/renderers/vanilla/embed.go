package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/partials/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName = "cropadvice.css"
	// StylesheetAssetKey is the theme asset key consulted for an external
	// stylesheet before falling back to the embedded one.
	StylesheetAssetKey = "cropadvice.stylesheet"
)

// Template paths inside TemplatesFS. Theme partials can override each one by
// using the same key.
const (
	TemplateReport = "templates/report.tmpl"
	TemplateUpload = "templates/upload.tmpl"
	TemplateBlocks = "templates/partials/blocks.tmpl"
)

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded stylesheet so callers can serve it over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

func defaultStylesheet() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(data)
}
