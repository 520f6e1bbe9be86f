package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the report itself.
type RenderOptions struct {
	// Title overrides the page or document heading.
	Title string
	// ImageURL points at the analysed image. The server passes a data URL so
	// uploads never touch disk. Renderers that cannot show images ignore it.
	ImageURL string
	// ImageAlt is the alternate text for ImageURL.
	ImageAlt string
	// BackURL is where "try another image" links point. Defaults to "/".
	BackURL string
	// Theme carries resolved go-theme tokens, partials, and asset lookups.
	Theme *theme.RendererConfig
}

// BackLink returns BackURL or "/" when unset.
func (o RenderOptions) BackLink() string {
	if o.BackURL == "" {
		return "/"
	}
	return o.BackURL
}
