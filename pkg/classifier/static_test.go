package classifier_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/classifier"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/testsupport"
)

func TestStatic_DefaultFixtures(t *testing.T) {
	static := classifier.DefaultStatic()

	if diff := cmp.Diff([]string{"Maize", "Rice", "Wheat"}, static.Crops()); diff != "" {
		t.Fatalf("crops mismatch (-want +got):\n%s", diff)
	}

	result, err := static.Classify(testsupport.Context(), classifier.Request{
		Crop:  "maize",
		Image: strings.NewReader("ignored"),
	})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if diff := cmp.Diff(testsupport.SampleResult(), result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestStatic_FixtureAdviceParses(t *testing.T) {
	static := classifier.DefaultStatic()
	for _, crop := range static.Crops() {
		result, err := static.Classify(testsupport.Context(), classifier.Request{Crop: crop})
		if err != nil {
			t.Fatalf("classify %s: %v", crop, err)
		}
		blocks := advice.Parse(result.Advice)
		if len(blocks) == 0 || blocks[0].Kind != advice.KindHeading1 {
			t.Fatalf("%s: expected advice to open with a heading, got %+v", crop, blocks)
		}
	}
}

func TestStatic_UnknownCrop(t *testing.T) {
	_, err := classifier.DefaultStatic().Classify(testsupport.Context(), classifier.Request{Crop: "Barley"})
	if !errors.Is(err, classifier.ErrNoFixture) {
		t.Fatalf("expected ErrNoFixture, got %v", err)
	}
	_, err = classifier.DefaultStatic().Classify(testsupport.Context(), classifier.Request{Crop: "  "})
	if !errors.Is(err, classifier.ErrMissingCrop) {
		t.Fatalf("expected ErrMissingCrop, got %v", err)
	}
}

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	doc := "fixtures:\n  - crop: rice\n    disease: Leaf Blast\n    confidence: 0.61\n    advice: \"- Drain the field\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}

	static, err := classifier.LoadFixtures(path)
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	result, err := static.Classify(testsupport.Context(), classifier.Request{Crop: "Rice"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Crop != "Rice" || result.Disease != "Leaf Blast" || result.Advice != "- Drain the field" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestParseFixtures_Rejects(t *testing.T) {
	tests := map[string]string{
		"empty":      "fixtures: []\n",
		"no crop":    "fixtures:\n  - disease: x\n",
		"confidence": "fixtures:\n  - crop: Rice\n    confidence: 2\n",
		"duplicate":  "fixtures:\n  - crop: Rice\n  - crop: rice\n",
		"bad yaml":   "fixtures: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := classifier.ParseFixtures([]byte(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFunc(t *testing.T) {
	called := false
	var c classifier.Classifier = classifier.Func(func(_ context.Context, req classifier.Request) (model.ClassificationResult, error) {
		called = true
		return model.ClassificationResult{Crop: req.Crop}, nil
	})
	result, err := c.Classify(testsupport.Context(), classifier.Request{Crop: "Wheat"})
	if err != nil || !called || result.Crop != "Wheat" {
		t.Fatalf("unexpected func classifier behaviour: %+v %v", result, err)
	}
}
