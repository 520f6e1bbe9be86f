// Package classifier talks to the external crop disease engine and provides
// an offline stand-in backed by fixtures.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-cropadvice/pkg/model"
)

// Classifier turns a leaf image into a classification result.
type Classifier interface {
	Classify(ctx context.Context, req Request) (model.ClassificationResult, error)
}

// Request carries one image to classify.
type Request struct {
	// Crop is the crop the image shows, e.g. "Maize".
	Crop        string
	Filename    string
	ContentType string
	Image       io.Reader
}

// ResponseValidator checks decoded engine responses before conversion.
// *contract.Contract satisfies it.
type ResponseValidator interface {
	ValidateResponse(value any) error
}

var (
	// ErrMissingCrop is returned when Request.Crop is blank.
	ErrMissingCrop = errors.New("classifier: crop is required")
	// ErrMissingImage is returned when Request.Image is nil.
	ErrMissingImage = errors.New("classifier: image is required")
	// ErrNoFixture is returned by Static for crops without a fixture.
	ErrNoFixture = errors.New("classifier: no fixture for crop")
)

// StatusError reports a non-2xx engine response.
type StatusError struct {
	StatusCode int
	Status     string
	// Body holds the start of the response body for diagnostics.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("classifier: engine returned %s", e.Status)
	}
	return fmt.Sprintf("classifier: engine returned %s: %s", e.Status, e.Body)
}

// Func adapts a function to Classifier.
type Func func(ctx context.Context, req Request) (model.ClassificationResult, error)

func (f Func) Classify(ctx context.Context, req Request) (model.ClassificationResult, error) {
	return f(ctx, req)
}

func validateRequest(req Request) error {
	if model.NormalizeCropName(req.Crop) == "" {
		return ErrMissingCrop
	}
	if req.Image == nil {
		return ErrMissingImage
	}
	return nil
}
