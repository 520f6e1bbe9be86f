package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-cropadvice/pkg/model"
)

// Transformer mutates a classification result before the report is built.
// Implementations can rename labels, fill in advice, or clamp values.
type Transformer interface {
	Transform(ctx context.Context, result *model.ClassificationResult) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, result *model.ClassificationResult) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, result *model.ClassificationResult) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, result)
}

// JSONPresetTransformer applies declarative patches loaded from JSON. Label
// aliases are keyed by the raw engine label; fallback advice is keyed by
// "Crop/Disease" and only used when the engine returned none:
//
//	{
//	  "aliases": {"Common_Rust": "Common Rust"},
//	  "fallbackAdvice": {"Maize/Common Rust": "# Common Rust\n- Scout weekly"}
//	}
type JSONPresetTransformer struct {
	document jsonPresetDocument
}

type jsonPresetDocument struct {
	Aliases        map[string]string `json:"aliases"`
	FallbackAdvice map[string]string `json:"fallbackAdvice"`
}

// NewJSONPresetTransformer constructs a transformer from raw JSON bytes.
func NewJSONPresetTransformer(data []byte) (*JSONPresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("json preset transformer: document is empty")
	}
	var document jsonPresetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("json preset transformer: parse document: %w", err)
	}

	fallbacks := make(map[string]string, len(document.FallbackAdvice))
	for key, value := range document.FallbackAdvice {
		normalized, err := presetKey(key)
		if err != nil {
			return nil, err
		}
		fallbacks[normalized] = value
	}
	document.FallbackAdvice = fallbacks
	return &JSONPresetTransformer{document: document}, nil
}

// NewJSONPresetTransformerFromFS loads a preset document from fsys.
func NewJSONPresetTransformerFromFS(fsys fs.FS, path string) (*JSONPresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("json preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("json preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("json preset transformer: read %s: %w", path, err)
	}
	return NewJSONPresetTransformer(data)
}

// Transform applies the aliases and fallback advice onto result.
func (t *JSONPresetTransformer) Transform(ctx context.Context, result *model.ClassificationResult) error {
	if result == nil {
		return errors.New("json preset transformer: result is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if alias, ok := t.document.Aliases[strings.TrimSpace(result.Disease)]; ok && strings.TrimSpace(alias) != "" {
		result.Disease = strings.TrimSpace(alias)
	}

	if strings.TrimSpace(result.Advice) != "" {
		return nil
	}
	key := model.NormalizeCropName(result.Crop) + "/" + strings.TrimSpace(result.Disease)
	if fallback, ok := t.document.FallbackAdvice[key]; ok {
		result.Advice = fallback
	}
	return nil
}

func presetKey(key string) (string, error) {
	crop, disease, ok := strings.Cut(key, "/")
	if !ok || strings.TrimSpace(crop) == "" || strings.TrimSpace(disease) == "" {
		return "", fmt.Errorf("json preset transformer: fallback key %q must be \"Crop/Disease\"", key)
	}
	return model.NormalizeCropName(crop) + "/" + strings.TrimSpace(disease), nil
}
