package markdown

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/render"
)

// Name is the registry key of the markdown renderer.
const Name = "markdown"

// Renderer writes reports as CommonMark. Parsing the output with any
// CommonMark parser yields the same heading, list and paragraph sequence as
// the report blocks.
type Renderer struct {
	header bool
}

// Option configures the markdown renderer.
type Option func(*Renderer)

// WithoutHeader omits the result summary and emits only the advice blocks.
func WithoutHeader() Option {
	return func(r *Renderer) {
		r.header = false
	}
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a markdown renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{header: true}
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
	return "text/markdown; charset=utf-8"
}

// Render writes an optional summary table followed by one markdown construct
// per block, separated by blank lines.
func (r *Renderer) Render(ctx context.Context, report model.Report, _ render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sections []string
	if r.header {
		sections = append(sections, summary(report.Result))
	}
	var previous advice.Kind
	for _, block := range report.Blocks {
		// Adjacent lists of the same kind would merge; switching the marker
		// starts a new list.
		alternate := block.IsList() && block.Kind == previous
		section, err := renderBlock(block, alternate)
		if err != nil {
			return nil, err
		}
		sections = append(sections, section)
		if alternate {
			previous = ""
		} else {
			previous = block.Kind
		}
	}
	if len(sections) == 0 {
		return []byte{}, nil
	}
	return []byte(strings.Join(sections, "\n\n") + "\n"), nil
}

// Block renders a single block without a trailing newline.
func Block(block advice.Block) (string, error) {
	return renderBlock(block, false)
}

func renderBlock(block advice.Block, alternate bool) (string, error) {
	bullet, delimiter := "- ", ". "
	if alternate {
		bullet, delimiter = "* ", ") "
	}

	switch block.Kind {
	case advice.KindHeading1:
		return "# " + escapeInline(block.Text), nil
	case advice.KindHeading2:
		return "## " + escapeInline(block.Text), nil
	case advice.KindHeading3:
		return "### " + escapeInline(block.Text), nil
	case advice.KindSubHeading:
		return "##### " + escapeInline(block.Text), nil
	case advice.KindParagraph:
		return escapeParagraph(block.Text), nil
	case advice.KindBulletList:
		lines := make([]string, len(block.Items))
		for i, item := range block.Items {
			lines[i] = strings.TrimRight(bullet+escapeItem(item), " ")
		}
		return strings.Join(lines, "\n"), nil
	case advice.KindNumberedList:
		lines := make([]string, len(block.Items))
		for i, item := range block.Items {
			lines[i] = strings.TrimRight(strconv.Itoa(i+1)+delimiter+escapeItem(item), " ")
		}
		return strings.Join(lines, "\n"), nil
	default:
		return "", fmt.Errorf("markdown: unknown block kind %q", block.Kind)
	}
}

func summary(result model.ClassificationResult) string {
	rows := []string{
		"| Crop | Disease | Confidence |",
		"| --- | --- | --- |",
		"| " + escapeCell(result.Crop) + " | " + escapeCell(result.Disease) + " | " + result.ConfidencePercent() + " |",
	}
	return strings.Join(rows, "\n")
}

var (
	inlineSpecial = strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		`*`, `\*`,
		`_`, `\_`,
		`[`, `\[`,
		`]`, `\]`,
		`<`, `\<`,
		`>`, `\>`,
		`#`, `\#`,
		`|`, `\|`,
		`&`, `\&`,
		`!`, `\!`,
	)
	// Line starts that would open a list, thematic break, setext underline,
	// heading, quote, fence or indented code block.
	blockStart = regexp.MustCompile(`^(\d+)([.)])(\s|$)|^[-+=~]`)
)

// escapeInline backslash-escapes characters with inline meaning.
func escapeInline(text string) string {
	return inlineSpecial.Replace(collapse(text))
}

// escapeItem escapes an item so it stays a single paragraph inside its list
// item.
func escapeItem(text string) string {
	return escapeLeading(escapeInline(text))
}

// escapeParagraph escapes text so it parses back as one paragraph.
func escapeParagraph(text string) string {
	escaped := escapeLeading(escapeInline(text))
	if escaped == "" {
		return "&#8203;"
	}
	return escaped
}

func escapeLeading(text string) string {
	if m := blockStart.FindStringSubmatchIndex(text); m != nil {
		if m[2] >= 0 {
			// ordered list marker: escape the delimiter.
			return text[:m[3]] + `\` + text[m[3]:]
		}
		return `\` + text
	}
	return text
}

func escapeCell(text string) string {
	return inlineSpecial.Replace(collapse(text))
}

// collapse folds internal whitespace runs and trims the ends so text never
// spans lines or starts with an indent.
func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
