// Package blockjson renders reports as JSON documents for API clients that
// lay out advice themselves.
package blockjson

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/render"
)

// Name is the registry key of the JSON renderer.
const Name = "blockjson"

// Document is the serialised shape.
type Document struct {
	Result            model.ClassificationResult `json:"result"`
	ConfidencePercent string                     `json:"confidence_percent"`
	Healthy           bool                       `json:"healthy"`
	Crop              *model.Crop                `json:"crop,omitempty"`
	Blocks            []advice.Block             `json:"blocks"`
}

// Renderer emits Document as JSON.
type Renderer struct {
	indent string
}

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints output using indent per level.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{}
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
	return "application/json"
}

func (r *Renderer) Render(ctx context.Context, report model.Report, _ render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := NewDocument(report)

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(doc, "", r.indent)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("blockjson: marshal: %w", err)
	}
	return append(out, '\n'), nil
}

// NewDocument builds the serialised shape. Blocks is never null.
func NewDocument(report model.Report) Document {
	blocks := report.Blocks
	if blocks == nil {
		blocks = []advice.Block{}
	}
	return Document{
		Result:            report.Result,
		ConfidencePercent: report.Result.ConfidencePercent(),
		Healthy:           report.Result.Healthy(),
		Crop:              report.Crop,
		Blocks:            blocks,
	}
}
