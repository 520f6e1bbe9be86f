package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-cropadvice/pkg/advice"
	"github.com/goliatone/go-cropadvice/pkg/classifier"
	"github.com/goliatone/go-cropadvice/pkg/history"
	"github.com/goliatone/go-cropadvice/pkg/model"
	"github.com/goliatone/go-cropadvice/pkg/orchestrator"
	"github.com/goliatone/go-cropadvice/pkg/render"
	"github.com/goliatone/go-cropadvice/pkg/renderers/blockjson"
	"github.com/goliatone/go-cropadvice/pkg/testsupport"
)

func TestDefaultRegistryHoldsBuiltins(t *testing.T) {
	registry, err := orchestrator.DefaultRegistry()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	want := []string{"blockjson", "markdown", "terminal", "vanilla"}
	if diff := cmp.Diff(want, registry.List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeRunsPipeline(t *testing.T) {
	store, err := history.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	orch := orchestrator.New(
		orchestrator.WithClassifier(classifier.DefaultStatic()),
		orchestrator.WithHistory(store),
	)

	outcome, err := orch.Analyze(context.Background(), orchestrator.AnalyzeRequest{
		Crop:      "maize",
		Filename:  "leaf.png",
		Image:     strings.NewReader("not really an image"),
		Renderer:  blockjson.Name,
		RequestID: "req-42",
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if outcome.Renderer != blockjson.Name {
		t.Fatalf("unexpected renderer %q", outcome.Renderer)
	}
	if outcome.ContentType != "application/json" {
		t.Fatalf("unexpected content type %q", outcome.ContentType)
	}
	if outcome.Report.Result.Disease != "Common Rust" {
		t.Fatalf("unexpected disease %q", outcome.Report.Result.Disease)
	}
	if diff := cmp.Diff(advice.Parse(testsupport.SampleAdvice), outcome.Report.Blocks); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}

	var doc blockjson.Document
	if err := json.Unmarshal(outcome.Output, &doc); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if doc.ConfidencePercent != "97.31%" {
		t.Fatalf("unexpected confidence %q", doc.ConfidencePercent)
	}

	if outcome.HistoryID == "" {
		t.Fatalf("expected history id")
	}
	entry, err := store.Get(context.Background(), outcome.HistoryID)
	if err != nil {
		t.Fatalf("history get: %v", err)
	}
	if entry.RequestID != "req-42" || entry.Filename != "leaf.png" {
		t.Fatalf("unexpected history entry %+v", entry)
	}
}

func TestAnalyzeDefaultsToVanilla(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithClassifier(classifier.DefaultStatic()))

	outcome, err := orch.Analyze(context.Background(), orchestrator.AnalyzeRequest{
		Crop:  "Wheat",
		Image: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if outcome.Renderer != "vanilla" {
		t.Fatalf("expected vanilla renderer, got %q", outcome.Renderer)
	}
	if !strings.Contains(string(outcome.Output), "Brown Rust in Wheat") {
		t.Fatalf("expected title in html output:\n%s", outcome.Output)
	}
}

func TestAnalyzeRequiresClassifier(t *testing.T) {
	orch := orchestrator.New()
	_, err := orch.Analyze(context.Background(), orchestrator.AnalyzeRequest{Crop: "Wheat", Image: strings.NewReader("x")})
	if !errors.Is(err, orchestrator.ErrClassifierRequired) {
		t.Fatalf("expected ErrClassifierRequired, got %v", err)
	}
}

func TestAnalyzeUnknownRendererSkipsClassification(t *testing.T) {
	called := false
	orch := orchestrator.New(orchestrator.WithClassifier(classifier.Func(func(context.Context, classifier.Request) (model.ClassificationResult, error) {
		called = true
		return model.ClassificationResult{}, nil
	})))

	_, err := orch.Analyze(context.Background(), orchestrator.AnalyzeRequest{
		Crop:     "Wheat",
		Image:    strings.NewReader("x"),
		Renderer: "pdf",
	})
	if !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
	if called {
		t.Fatalf("classifier should not run for unknown renderer")
	}
}

func TestAnalyzeWrapsClassifierError(t *testing.T) {
	engineErr := &classifier.StatusError{StatusCode: 500, Status: "500 Internal Server Error"}
	orch := orchestrator.New(orchestrator.WithClassifier(classifier.Func(func(context.Context, classifier.Request) (model.ClassificationResult, error) {
		return model.ClassificationResult{}, engineErr
	})))

	_, err := orch.Analyze(context.Background(), orchestrator.AnalyzeRequest{Crop: "Rice", Image: strings.NewReader("x")})
	var statusErr *classifier.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 500 {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
	if !errors.Is(err, orchestrator.ErrClassify) {
		t.Fatalf("expected ErrClassify, got %v", err)
	}
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, history.Entry) (history.Entry, error) {
	return history.Entry{}, errors.New("disk full")
}

func TestAnalyzeHistoryFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	orch := orchestrator.New(
		orchestrator.WithClassifier(classifier.DefaultStatic()),
		orchestrator.WithHistory(failingRecorder{}),
		orchestrator.WithLogger(zap.New(core)),
		orchestrator.WithDefaultRenderer("markdown"),
	)

	outcome, err := orch.Analyze(context.Background(), orchestrator.AnalyzeRequest{
		Crop:      "Rice",
		Image:     strings.NewReader("x"),
		RequestID: "req-7",
	})
	if err != nil {
		t.Fatalf("analyze should succeed despite history failure: %v", err)
	}
	if outcome.HistoryID != "" {
		t.Fatalf("expected no history id, got %q", outcome.HistoryID)
	}

	entries := logs.FilterMessage("record analysis failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-7" {
		t.Fatalf("unexpected request_id field %v", got)
	}
}

func TestRenderExistingResult(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithDefaultRenderer("terminal"))
	outcome, err := orch.Render(context.Background(), orchestrator.RenderRequest{
		Result: testsupport.SampleResult(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if outcome.ContentType != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", outcome.ContentType)
	}
	if !strings.Contains(string(outcome.Output), "Common Rust") {
		t.Fatalf("expected disease in output:\n%s", outcome.Output)
	}
}

func TestRenderWithCatalogueBuilderRejectsUnknownCrop(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithModelBuilder(
		model.NewBuilder(model.WithCatalogue(model.DefaultCatalogue())),
	))
	_, err := orch.Render(context.Background(), orchestrator.RenderRequest{
		Result: model.ClassificationResult{Crop: "Tomato", Disease: "Healthy"},
	})
	if !errors.Is(err, model.ErrUnknownCrop) {
		t.Fatalf("expected ErrUnknownCrop, got %v", err)
	}
}

func TestRenderCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := orchestrator.New().Render(ctx, orchestrator.RenderRequest{Result: testsupport.SampleResult()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTransformerRunsBeforeBuild(t *testing.T) {
	transformCalled := false
	orch := orchestrator.New(
		orchestrator.WithDefaultRenderer(blockjson.Name),
		orchestrator.WithTransformer(orchestrator.TransformerFunc(func(_ context.Context, result *model.ClassificationResult) error {
			transformCalled = true
			result.Advice = "## **Patched**"
			return nil
		})),
	)

	outcome, err := orch.Render(context.Background(), orchestrator.RenderRequest{
		Result: model.ClassificationResult{Crop: "Wheat", Disease: "Healthy", Confidence: 1},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !transformCalled {
		t.Fatalf("expected transformer to be invoked")
	}
	want := []advice.Block{{Kind: advice.KindHeading2, Text: "Patched"}}
	if diff := cmp.Diff(want, outcome.Report.Blocks); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformerErrorStopsPipeline(t *testing.T) {
	orch := orchestrator.New(orchestrator.WithTransformer(orchestrator.TransformerFunc(func(context.Context, *model.ClassificationResult) error {
		return errors.New("nope")
	})))
	if _, err := orch.Render(context.Background(), orchestrator.RenderRequest{Result: testsupport.SampleResult()}); err == nil {
		t.Fatalf("expected transformer error")
	}
}

func TestJSONPresetTransformer(t *testing.T) {
	fsys := fstest.MapFS{
		"preset.json": {Data: []byte(`{
			"aliases": {"Common_Rust": "Common Rust"},
			"fallbackAdvice": {"maize/Common Rust": "# Rust fallback"}
		}`)},
	}
	transformer, err := orchestrator.NewJSONPresetTransformerFromFS(fsys, "preset.json")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}

	result := model.ClassificationResult{Crop: "Maize", Disease: "Common_Rust"}
	if err := transformer.Transform(context.Background(), &result); err != nil {
		t.Fatalf("transform: %v", err)
	}
	want := model.ClassificationResult{Crop: "Maize", Disease: "Common Rust", Advice: "# Rust fallback"}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	kept := model.ClassificationResult{Crop: "Maize", Disease: "Common Rust", Advice: "engine advice"}
	if err := transformer.Transform(context.Background(), &kept); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if kept.Advice != "engine advice" {
		t.Fatalf("engine advice should win over fallback, got %q", kept.Advice)
	}
}

func TestJSONPresetTransformerRejectsBadInput(t *testing.T) {
	if _, err := orchestrator.NewJSONPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := orchestrator.NewJSONPresetTransformer([]byte(`{"fallbackAdvice": {"Maize": "x"}}`)); err == nil {
		t.Fatalf("expected error for key without disease")
	}
	if _, err := orchestrator.NewJSONPresetTransformerFromFS(fstest.MapFS{}, "missing.json"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
