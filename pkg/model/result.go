package model

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/goliatone/go-cropadvice/pkg/advice"
)

// HealthyLabel is the disease label the engine uses for healthy plants.
const HealthyLabel = "Healthy"

// ClassificationResult mirrors the engine's /api/predict response. A missing
// advice field decodes to the empty string and yields no blocks.
type ClassificationResult struct {
	Crop       string  `json:"crop"`
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
	Advice     string  `json:"advice,omitempty"`
}

// ConfidencePercent formats Confidence (0..1) as a percentage with at most
// two decimals, e.g. 0.9731 -> "97.31%".
func (r ClassificationResult) ConfidencePercent() string {
	return humanize.FtoaWithDigits(r.Confidence*100, 2) + "%"
}

// Healthy reports whether the engine found no disease.
func (r ClassificationResult) Healthy() bool {
	return strings.EqualFold(strings.TrimSpace(r.Disease), HealthyLabel)
}

// Report is the render input: the raw result plus its parsed advice.
type Report struct {
	Result ClassificationResult `json:"result"`
	Blocks []advice.Block       `json:"blocks"`
	Crop   *Crop                `json:"crop,omitempty"`
}

// HasAdvice reports whether any advice blocks were produced.
func (r Report) HasAdvice() bool {
	return len(r.Blocks) > 0
}
