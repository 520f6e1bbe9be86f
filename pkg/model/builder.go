package model

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-cropadvice/pkg/advice"
)

var (
	// ErrUnknownCrop is returned when a catalogue is configured and the result
	// names a crop it does not list.
	ErrUnknownCrop = errors.New("model: unknown crop")
	// ErrUnknownDisease is returned in strict mode for labels the crop's
	// model does not emit.
	ErrUnknownDisease = errors.New("model: unknown disease label")
)

// Builder converts classification results into render-ready reports.
type Builder interface {
	Build(result ClassificationResult) (Report, error)
}

// BuilderOption configures the builder behaviour.
type BuilderOption func(*builderOptions)

type builderOptions struct {
	catalogue    *Catalogue
	strictLabels bool
}

// WithCatalogue validates crops against catalogue and attaches the matching
// entry to each report.
func WithCatalogue(catalogue *Catalogue) BuilderOption {
	return func(opts *builderOptions) {
		opts.catalogue = catalogue
	}
}

// WithStrictLabels also rejects disease labels missing from the catalogue.
// It has no effect without WithCatalogue.
func WithStrictLabels() BuilderOption {
	return func(opts *builderOptions) {
		opts.strictLabels = true
	}
}

// NewBuilder returns the default Builder.
func NewBuilder(options ...BuilderOption) Builder {
	var cfg builderOptions
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return &builder{opts: cfg}
}

type builder struct {
	opts builderOptions
}

func (b *builder) Build(result ClassificationResult) (Report, error) {
	report := Report{Result: result}

	if b.opts.catalogue != nil {
		crop, ok := b.opts.catalogue.Lookup(result.Crop)
		if !ok {
			return Report{}, fmt.Errorf("%w: %q", ErrUnknownCrop, result.Crop)
		}
		if b.opts.strictLabels && !crop.HasLabel(result.Disease) {
			return Report{}, fmt.Errorf("%w: %q for %s", ErrUnknownDisease, result.Disease, crop.Name)
		}
		report.Crop = &crop
	}

	report.Blocks = advice.Parse(result.Advice)
	return report, nil
}
