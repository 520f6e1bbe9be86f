package classifier

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-cropadvice/pkg/model"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixture is a canned classification for one crop.
type Fixture struct {
	Crop       string  `yaml:"crop"`
	Disease    string  `yaml:"disease"`
	Confidence float64 `yaml:"confidence"`
	Advice     string  `yaml:"advice"`
}

type fixtureFile struct {
	Fixtures []Fixture `yaml:"fixtures"`
}

// Static answers from fixtures without contacting the engine. The image is
// read and discarded.
type Static struct {
	fixtures map[string]Fixture
}

var _ Classifier = (*Static)(nil)

// DefaultStatic returns a Static backed by the embedded fixtures.
func DefaultStatic() *Static {
	static, err := ParseFixtures(defaultFixtures)
	if err != nil {
		panic(fmt.Sprintf("classifier: embedded fixtures: %v", err))
	}
	return static
}

// LoadFixtures reads fixtures from a YAML file.
func LoadFixtures(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("classifier: read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a fixtures document. Crop names are normalised and
// must be unique.
func ParseFixtures(data []byte) (*Static, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("classifier: decode fixtures: %w", err)
	}
	if len(file.Fixtures) == 0 {
		return nil, fmt.Errorf("classifier: fixtures document is empty")
	}
	return NewStatic(file.Fixtures...)
}

// NewStatic builds a Static from fixtures.
func NewStatic(fixtures ...Fixture) (*Static, error) {
	s := &Static{fixtures: make(map[string]Fixture, len(fixtures))}
	for i, fixture := range fixtures {
		crop := model.NormalizeCropName(fixture.Crop)
		if crop == "" {
			return nil, fmt.Errorf("classifier: fixture %d has no crop", i)
		}
		if fixture.Confidence < 0 || fixture.Confidence > 1 {
			return nil, fmt.Errorf("classifier: fixture %q confidence %v outside 0..1", crop, fixture.Confidence)
		}
		if _, dup := s.fixtures[crop]; dup {
			return nil, fmt.Errorf("classifier: duplicate fixture for %q", crop)
		}
		fixture.Crop = crop
		s.fixtures[crop] = fixture
	}
	return s, nil
}

// Crops lists the crops with fixtures, sorted.
func (s *Static) Crops() []string {
	out := make([]string, 0, len(s.fixtures))
	for crop := range s.fixtures {
		out = append(out, crop)
	}
	sort.Strings(out)
	return out
}

func (s *Static) Classify(ctx context.Context, req Request) (model.ClassificationResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ClassificationResult{}, err
	}
	crop := model.NormalizeCropName(req.Crop)
	if crop == "" {
		return model.ClassificationResult{}, ErrMissingCrop
	}
	if req.Image != nil {
		if _, err := io.Copy(io.Discard, req.Image); err != nil {
			return model.ClassificationResult{}, fmt.Errorf("classifier: read image: %w", err)
		}
	}

	fixture, ok := s.fixtures[crop]
	if !ok {
		return model.ClassificationResult{}, fmt.Errorf("%w: %q", ErrNoFixture, crop)
	}
	return model.ClassificationResult{
		Crop:       fixture.Crop,
		Disease:    fixture.Disease,
		Confidence: fixture.Confidence,
		Advice:     fixture.Advice,
	}, nil
}
