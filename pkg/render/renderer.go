package render

import (
	"context"

	"github.com/goliatone/go-cropadvice/pkg/model"
)

// Renderer converts a Report into a byte representation (HTML, terminal
// text, markdown, JSON). Renderers consume advice blocks as data and never
// re-parse markup.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, report model.Report, options RenderOptions) ([]byte, error)
}
