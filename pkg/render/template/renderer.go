package template

import (
	"io"
)

// TemplateRenderer is the engine contract renderers rely on. Every render
// method returns the output and also writes it to any supplied writers.
type TemplateRenderer interface {
	// Render treats name as inline template source when it contains template
	// tags and as a template path otherwise.
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
