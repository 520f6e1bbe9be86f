package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-cropadvice/pkg/advice"
)

func TestBuilder_ParsesAdvice(t *testing.T) {
	report, err := NewBuilder().Build(ClassificationResult{
		Crop:       "Wheat",
		Disease:    "Brown Rust",
		Confidence: 0.93,
		Advice:     "# **Diagnosis**\nYour plant has rust.",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := []advice.Block{advice.Heading1("Diagnosis"), advice.Paragraph("Your plant has rust.")}
	if diff := cmp.Diff(want, report.Blocks); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}
	if report.Crop != nil {
		t.Fatalf("expected no crop without catalogue, got %+v", report.Crop)
	}
}

func TestBuilder_EmptyAdvice(t *testing.T) {
	report, err := NewBuilder().Build(ClassificationResult{Crop: "Rice", Disease: "Healthy", Confidence: 1})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.HasAdvice() {
		t.Fatalf("expected no advice blocks, got %+v", report.Blocks)
	}
	if report.Blocks == nil {
		t.Fatalf("expected empty non-nil blocks")
	}
}

func TestBuilder_Catalogue(t *testing.T) {
	builder := NewBuilder(WithCatalogue(DefaultCatalogue()), WithStrictLabels())

	report, err := builder.Build(ClassificationResult{Crop: "maize", Disease: "Common Rust"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.Crop == nil || report.Crop.Name != "Maize" {
		t.Fatalf("expected maize catalogue entry, got %+v", report.Crop)
	}

	if _, err := builder.Build(ClassificationResult{Crop: "Barley"}); !errors.Is(err, ErrUnknownCrop) {
		t.Fatalf("expected ErrUnknownCrop, got %v", err)
	}
	if _, err := builder.Build(ClassificationResult{Crop: "Rice", Disease: "Smut"}); !errors.Is(err, ErrUnknownDisease) {
		t.Fatalf("expected ErrUnknownDisease, got %v", err)
	}
}

func TestBuilder_LenientLabels(t *testing.T) {
	builder := NewBuilder(WithCatalogue(DefaultCatalogue()))
	if _, err := builder.Build(ClassificationResult{Crop: "Rice", Disease: "Something New"}); err != nil {
		t.Fatalf("expected lenient builder to accept unknown label, got %v", err)
	}
}

func TestClassificationResult_ConfidencePercent(t *testing.T) {
	tests := map[float64]string{
		0:      "0%",
		0.5:    "50%",
		0.9731: "97.31%",
		1:      "100%",
	}
	for confidence, want := range tests {
		got := ClassificationResult{Confidence: confidence}.ConfidencePercent()
		if got != want {
			t.Fatalf("ConfidencePercent(%v) = %q, want %q", confidence, got, want)
		}
	}
}

func TestClassificationResult_Healthy(t *testing.T) {
	if !(ClassificationResult{Disease: " healthy "}).Healthy() {
		t.Fatalf("expected healthy")
	}
	if (ClassificationResult{Disease: "Leaf Blast"}).Healthy() {
		t.Fatalf("expected diseased")
	}
}

func TestDefaultCatalogue(t *testing.T) {
	catalogue := DefaultCatalogue()
	if diff := cmp.Diff([]string{"Wheat", "Rice", "Maize"}, catalogue.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	rice, ok := catalogue.Lookup("RICE")
	if !ok {
		t.Fatalf("expected rice lookup to succeed")
	}
	want := []string{"Bacterial Leaf Blight", "Brown Spot", "Leaf Blast", "Healthy"}
	if diff := cmp.Diff(want, rice.Labels); diff != "" {
		t.Fatalf("rice labels mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCatalogue(t *testing.T) {
	catalogue, err := ParseCatalogue([]byte("crops:\n  - name: pearl  millet\n    labels: [Blast]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	crop, ok := catalogue.Lookup("pearl-millet")
	if !ok {
		t.Fatalf("expected slug lookup to succeed, names %v", catalogue.Names())
	}
	if crop.Name != "Pearl Millet" {
		t.Fatalf("expected normalised name, got %q", crop.Name)
	}

	if _, err := ParseCatalogue([]byte("crops: []")); err == nil {
		t.Fatalf("expected error for empty catalogue")
	}
	if _, err := ParseCatalogue([]byte("crops:\n  - name: Rice\n  - name: rice\n")); err == nil {
		t.Fatalf("expected duplicate crop error")
	}
}
