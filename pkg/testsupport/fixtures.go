package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/model"
)

// SampleAdvice is a representative engine response covering every block kind.
const SampleAdvice = `# **Common Rust in Maize**

## **Symptoms**
- Small reddish-brown pustules on both leaf surfaces
- Pustules darken as the plant matures

**Treatment**
1. Plant resistant hybrids next season
2. Apply a recommended fungicide at first sign

Scout fields **weekly** during humid weather.
`

// SampleResult returns a diseased classification carrying SampleAdvice.
func SampleResult() model.ClassificationResult {
	return model.ClassificationResult{
		Crop:       "Maize",
		Disease:    "Common Rust",
		Confidence: 0.9731,
		Advice:     SampleAdvice,
	}
}

// SampleReport returns the report built from SampleResult.
func SampleReport() model.Report {
	result := SampleResult()
	return model.Report{
		Result: result,
		Blocks: advice.Parse(result.Advice),
	}
}

// MustLoadReport reads a JSON fixture into a model.Report.
func MustLoadReport(t *testing.T, path string) model.Report {
	t.Helper()

	report, err := LoadReport(path)
	if err != nil {
		t.Fatalf("load report: %v", err)
	}
	return report
}

// LoadReport reads a JSON fixture into a model.Report, returning an error for
// callers managing setup outside of *testing.T.
func LoadReport(path string) (model.Report, error) {
	if path == "" {
		return model.Report{}, errors.New("testsupport: report path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Report{}, fmt.Errorf("testsupport: read report: %w", err)
	}
	var out model.Report
	if err := json.Unmarshal(data, &out); err != nil {
		return model.Report{}, fmt.Errorf("testsupport: unmarshal report: %w", err)
	}
	return out, nil
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	writeFile(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}
