package terminal

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles applied to each part of the output.
type Styles struct {
	Title      lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	Disease    lipgloss.Style
	Healthy    lipgloss.Style
	Heading1   lipgloss.Style
	Heading2   lipgloss.Style
	Heading3   lipgloss.Style
	SubHeading lipgloss.Style
	Marker     lipgloss.Style
	Item       lipgloss.Style
	Paragraph  lipgloss.Style
	Muted      lipgloss.Style
}

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#2F855A", Dark: "#8BC34A"}
	colorDanger = lipgloss.AdaptiveColor{Light: "#C53030", Dark: "#E57373"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#52606D", Dark: "#9AA5B1"}
)

// DefaultStyles returns the colour scheme used when no styles are supplied.
func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Label:      lipgloss.NewStyle().Foreground(colorMuted),
		Value:      lipgloss.NewStyle().Bold(true),
		Disease:    lipgloss.NewStyle().Bold(true).Foreground(colorDanger),
		Healthy:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Heading1:   lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorAccent),
		Heading2:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		Heading3:   lipgloss.NewStyle().Bold(true),
		SubHeading: lipgloss.NewStyle().Underline(true),
		Marker:     lipgloss.NewStyle().Foreground(colorAccent),
		Item:       lipgloss.NewStyle(),
		Paragraph:  lipgloss.NewStyle(),
		Muted:      lipgloss.NewStyle().Italic(true).Foreground(colorMuted),
	}
}

// PlainStyles returns styles that emit no escape sequences.
func PlainStyles() Styles {
	return Styles{}
}

// Option configures the terminal renderer.
type Option func(*Renderer)

// WithWidth wraps text at width columns. Zero or negative disables wrapping.
func WithWidth(width int) Option {
	return func(r *Renderer) {
		r.width = width
	}
}

// WithStyles overrides the default styles.
func WithStyles(styles Styles) Option {
	return func(r *Renderer) {
		r.styles = styles
	}
}

// WithPlain disables ANSI styling entirely.
func WithPlain() Option {
	return func(r *Renderer) {
		r.styles = PlainStyles()
	}
}
