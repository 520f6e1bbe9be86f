package terminal_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"
	"github.com/muesli/termenv"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/render"
	"github.com/goliatone/go-cropadvice/pkg/renderers/terminal"
	"github.com/goliatone/go-cropadvice/pkg/testsupport"
)

func TestRenderer_PlainOutput(t *testing.T) {
	renderer := terminal.New(terminal.WithPlain(), terminal.WithWidth(0))

	output, err := renderer.Render(testsupport.Context(), testsupport.SampleReport(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `Crop Advice

Crop:       Maize
Disease:    Common Rust
Confidence: 97.31%

Common Rust in Maize

Symptoms

  • Small reddish-brown pustules on both leaf surfaces
  • Pustules darken as the plant matures

Treatment

  1. Plant resistant hybrids next season
  2. Apply a recommended fungicide at first sign

Scout fields weekly during humid weather.
`
	if diff := cmp.Diff(want, string(output)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_NumbersAlignPastNine(t *testing.T) {
	items := make([]string, 10)
	for i := range items {
		items[i] = "step"
	}
	report := model.Report{
		Result: model.ClassificationResult{Crop: "Rice", Disease: "Leaf Blast", Confidence: 0.5},
		Blocks: []advice.Block{advice.NumberedList(items...)},
	}

	output, err := terminal.New(terminal.WithPlain()).Render(testsupport.Context(), report, render.RenderOptions{Title: "Rice"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(output)
	if !strings.Contains(text, "\n   1. step\n") {
		t.Fatalf("expected padded first item, got:\n%s", text)
	}
	if !strings.Contains(text, "\n  10. step\n") {
		t.Fatalf("expected tenth item, got:\n%s", text)
	}
	if !strings.HasPrefix(text, "Rice\n") {
		t.Fatalf("expected explicit title, got:\n%s", text)
	}
}

func TestRenderer_WrapsToWidth(t *testing.T) {
	const width = 24
	paragraph := "Scout fields weekly during humid weather and remove volunteer plants early."
	item := "Apply a recommended fungicide at the first sign of pustules"
	report := model.Report{
		Result: model.ClassificationResult{Crop: "Maize", Disease: "Common Rust", Confidence: 0.9},
		Blocks: []advice.Block{advice.Paragraph(paragraph), advice.BulletList(item)},
	}

	output, err := terminal.New(terminal.WithPlain(), terminal.WithWidth(width)).Render(testsupport.Context(), report, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	// title, result rows, paragraph, list
	sections := strings.Split(strings.TrimSuffix(string(output), "\n"), "\n\n")
	if len(sections) != 4 {
		t.Fatalf("expected title, result, paragraph and list sections, got %d:\n%s", len(sections), output)
	}
	if sections[0] != "Crop Advice" {
		t.Fatalf("expected default title, got %q", sections[0])
	}
	if rows := strings.Split(sections[1], "\n"); len(rows) != 3 || !strings.HasPrefix(rows[0], "Crop:") {
		t.Fatalf("unexpected result rows %q", sections[1])
	}

	paraLines := strings.Split(sections[2], "\n")
	if len(paraLines) < 2 {
		t.Fatalf("expected paragraph to wrap, got %q", sections[2])
	}
	for _, line := range paraLines {
		if lipgloss.Width(line) > width {
			t.Fatalf("line exceeds width %d: %q", width, line)
		}
	}
	if got := strings.Join(strings.Fields(sections[2]), " "); got != paragraph {
		t.Fatalf("wrapped paragraph lost words: %q", got)
	}

	itemLines := strings.Split(sections[3], "\n")
	if len(itemLines) < 2 {
		t.Fatalf("expected item to wrap, got %q", sections[3])
	}
	if !strings.HasPrefix(itemLines[0], "  • ") {
		t.Fatalf("unexpected item lead %q", itemLines[0])
	}
	for _, line := range itemLines[1:] {
		if !strings.HasPrefix(line, "    ") {
			t.Fatalf("expected hanging indent, got %q", line)
		}
	}
}

func TestRenderer_SubHeadingAndEmptyAdvice(t *testing.T) {
	renderer := terminal.New(terminal.WithPlain())

	report := model.Report{
		Result: model.ClassificationResult{Crop: "Wheat", Disease: "Healthy", Confidence: 1},
	}
	output, err := renderer.Render(testsupport.Context(), report, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasSuffix(string(output), "\n\nNo advice was returned for this result.\n") {
		t.Fatalf("expected empty advice notice, got:\n%s", output)
	}

	report.Blocks = advice.Parse("- Fertilizer:\n- Urea 20kg")
	output, err = renderer.Render(testsupport.Context(), report, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasSuffix(string(output), "\n\nFertilizer\n\n  • Urea 20kg\n") {
		t.Fatalf("unexpected sub-heading rendering:\n%s", output)
	}
}

func TestRenderer_StyledOutputUsesANSI(t *testing.T) {
	previous := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(previous) })

	output, err := terminal.New().Render(testsupport.Context(), testsupport.SampleReport(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(output), "\x1b[") {
		t.Fatalf("expected ANSI sequences in styled output")
	}

	plain, err := terminal.New(terminal.WithPlain()).Render(testsupport.Context(), testsupport.SampleReport(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(plain), "\x1b[") {
		t.Fatalf("expected no ANSI sequences in plain output")
	}
}

func TestRenderer_UnknownKind(t *testing.T) {
	report := model.Report{Blocks: []advice.Block{{Kind: "table"}}}
	if _, err := terminal.New().Render(testsupport.Context(), report, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for unknown block kind")
	}
}

func TestRenderer_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := terminal.New().Render(ctx, testsupport.SampleReport(), render.RenderOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
