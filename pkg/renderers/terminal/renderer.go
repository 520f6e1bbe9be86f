package terminal

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/render"
)

// Name is the registry key of the terminal renderer.
const Name = "terminal"

const (
	defaultWidth = 80
	defaultTitle = "Crop Advice"
	bulletMarker = "•"
	itemIndent   = "  "
)

// Renderer writes reports as styled terminal text.
type Renderer struct {
	width  int
	styles Styles
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a terminal renderer with the default styles and an
// 80-column wrap.
func New(options ...Option) *Renderer {
	r := &Renderer{
		width:  defaultWidth,
		styles: DefaultStyles(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes the result header followed by the advice blocks, one blank
// line between sections.
func (r *Renderer) Render(ctx context.Context, report model.Report, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sections := []string{r.header(report.Result, opts.Title)}
	if len(report.Blocks) == 0 {
		sections = append(sections, r.styles.Muted.Render("No advice was returned for this result."))
	}
	for _, block := range report.Blocks {
		section, err := r.block(block)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}

	return []byte(strings.Join(sections, "\n\n") + "\n"), nil
}

func (r *Renderer) header(result model.ClassificationResult, title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultTitle
	}

	diseaseStyle := r.styles.Disease
	if result.Healthy() {
		diseaseStyle = r.styles.Healthy
	}

	rows := [][2]string{
		{"Crop:", r.styles.Value.Render(result.Crop)},
		{"Disease:", diseaseStyle.Render(result.Disease)},
		{"Confidence:", r.styles.Value.Render(result.ConfidencePercent())},
	}
	labelWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, len(row[0]))
	}

	lines := []string{r.styles.Title.Render(title), ""}
	for _, row := range rows {
		label := row[0] + strings.Repeat(" ", labelWidth-len(row[0])+1)
		lines = append(lines, r.styles.Label.Render(label)+row[1])
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) block(block advice.Block) (string, error) {
	switch block.Kind {
	case advice.KindHeading1:
		return r.text(block.Text, r.styles.Heading1), nil
	case advice.KindHeading2:
		return r.text(block.Text, r.styles.Heading2), nil
	case advice.KindHeading3:
		return r.text(block.Text, r.styles.Heading3), nil
	case advice.KindSubHeading:
		return r.text(block.Text, r.styles.SubHeading), nil
	case advice.KindParagraph:
		return r.text(block.Text, r.styles.Paragraph), nil
	case advice.KindBulletList:
		return r.list(block.Items, func(int) string { return bulletMarker }), nil
	case advice.KindNumberedList:
		digits := len(strconv.Itoa(len(block.Items)))
		return r.list(block.Items, func(i int) string {
			return fmt.Sprintf("%*d.", digits, i+1)
		}), nil
	default:
		return "", fmt.Errorf("terminal: unknown block kind %q", block.Kind)
	}
}

func (r *Renderer) text(text string, style lipgloss.Style) string {
	lines := strings.Split(r.wrap(text, r.width), "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

// list renders items with a marker and a hanging indent for wrapped lines.
func (r *Renderer) list(items []string, marker func(int) string) string {
	out := make([]string, 0, len(items))
	for i, item := range items {
		prefix := itemIndent + marker(i) + " "
		hang := strings.Repeat(" ", lipgloss.Width(prefix))

		lines := strings.Split(r.wrap(item, r.width-len(hang)), "\n")
		for j, line := range lines {
			lead := hang
			if j == 0 {
				lead = itemIndent + r.styles.Marker.Render(marker(i)) + " "
			}
			lines[j] = lead + r.styles.Item.Render(line)
		}
		out = append(out, strings.Join(lines, "\n"))
	}
	return strings.Join(out, "\n")
}

func (r *Renderer) wrap(text string, width int) string {
	if r.width <= 0 || width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}
