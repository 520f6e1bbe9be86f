// Package contract holds the OpenAPI description of the prediction service
// and validates traffic against it.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// PredictPath is the classification endpoint path.
const PredictPath = "/api/predict"

//go:embed predict.yaml
var predictSpec []byte

var (
	// ErrInvalidResponse wraps schema violations in engine responses.
	ErrInvalidResponse = errors.New("contract: invalid response")
	// ErrInvalidRequest wraps schema violations in request fields.
	ErrInvalidRequest = errors.New("contract: invalid request")
)

// Contract is a loaded, validated service description.
type Contract struct {
	doc      *openapi3.T
	request  *openapi3.Schema
	response *openapi3.Schema
}

// Raw returns the embedded OpenAPI document.
func Raw() []byte {
	out := make([]byte, len(predictSpec))
	copy(out, predictSpec)
	return out
}

// Load parses the embedded document.
func Load(ctx context.Context) (*Contract, error) {
	return LoadFromData(ctx, predictSpec)
}

// LoadFromData parses and validates an OpenAPI document that must describe
// POST PredictPath with a multipart request and a JSON 200 response.
func LoadFromData(ctx context.Context, data []byte) (*Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}

	if doc.Paths == nil {
		return nil, fmt.Errorf("contract: document does not describe %s", PredictPath)
	}
	item := doc.Paths.Value(PredictPath)
	if item == nil || item.Post == nil {
		return nil, fmt.Errorf("contract: document does not describe POST %s", PredictPath)
	}

	request, err := requestSchema(item.Post)
	if err != nil {
		return nil, err
	}
	response, err := responseSchema(item.Post)
	if err != nil {
		return nil, err
	}

	return &Contract{doc: doc, request: request, response: response}, nil
}

// Version reports the document's info.version.
func (c *Contract) Version() string {
	if c == nil || c.doc == nil || c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Version
}

// ValidateResponse checks a decoded engine response against the 200 schema.
// Structs are converted through JSON first.
func (c *Contract) ValidateResponse(value any) error {
	normalized, err := normalize(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := c.response.VisitJSON(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// ValidateCrop checks a crop name against the request enum.
func (c *Contract) ValidateCrop(crop string) error {
	prop := c.cropSchema()
	if prop == nil {
		return nil
	}
	if err := prop.VisitJSON(crop); err != nil {
		return fmt.Errorf("%w: crop %q: %v", ErrInvalidRequest, crop, err)
	}
	return nil
}

// Crops returns the crop enum in document order.
func (c *Contract) Crops() []string {
	prop := c.cropSchema()
	if prop == nil {
		return nil
	}
	out := make([]string, 0, len(prop.Enum))
	for _, value := range prop.Enum {
		if s, ok := value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (c *Contract) cropSchema() *openapi3.Schema {
	if c == nil || c.request == nil {
		return nil
	}
	ref := c.request.Properties["crop"]
	if ref == nil {
		return nil
	}
	return ref.Value
}

func requestSchema(op *openapi3.Operation) (*openapi3.Schema, error) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, errors.New("contract: predict operation has no request body")
	}
	media := op.RequestBody.Value.Content.Get("multipart/form-data")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, errors.New("contract: predict request is not multipart/form-data")
	}
	return media.Schema.Value, nil
}

func responseSchema(op *openapi3.Operation) (*openapi3.Schema, error) {
	if op.Responses == nil {
		return nil, errors.New("contract: predict operation has no responses")
	}
	ref := op.Responses.Status(200)
	if ref == nil || ref.Value == nil {
		return nil, errors.New("contract: predict operation has no 200 response")
	}
	media := ref.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, errors.New("contract: predict 200 response is not application/json")
	}
	return media.Schema.Value, nil
}

func normalize(value any) (any, error) {
	switch value.(type) {
	case map[string]any, nil:
		return value, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
