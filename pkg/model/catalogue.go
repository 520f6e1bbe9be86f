package model

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed crops.yaml
var defaultCatalogueYAML []byte

// Crop describes a crop the engine can classify and the disease labels its
// model emits.
type Crop struct {
	Name   string   `yaml:"name" json:"name"`
	Slug   string   `yaml:"slug" json:"slug"`
	Labels []string `yaml:"labels" json:"labels"`
}

// HasLabel reports whether label is one of the crop's disease labels.
func (c Crop) HasLabel(label string) bool {
	label = strings.TrimSpace(label)
	for _, candidate := range c.Labels {
		if strings.EqualFold(candidate, label) {
			return true
		}
	}
	return false
}

// Catalogue is an ordered, read-only set of crops.
type Catalogue struct {
	crops []Crop
}

type catalogueFile struct {
	Crops []Crop `yaml:"crops"`
}

// DefaultCatalogue returns the embedded catalogue (wheat, rice, maize).
func DefaultCatalogue() *Catalogue {
	catalogue, err := ParseCatalogue(defaultCatalogueYAML)
	if err != nil {
		panic(fmt.Sprintf("model: embedded catalogue: %v", err))
	}
	return catalogue
}

// LoadCatalogue reads a catalogue from a YAML file.
func LoadCatalogue(path string) (*Catalogue, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model: catalogue path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read catalogue: %w", err)
	}
	return ParseCatalogue(data)
}

// ParseCatalogue decodes a YAML catalogue document. Names are normalised and
// slugs derived when missing; duplicate slugs are rejected.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("model: decode catalogue: %w", err)
	}
	if len(file.Crops) == 0 {
		return nil, errors.New("model: catalogue has no crops")
	}

	seen := make(map[string]struct{}, len(file.Crops))
	crops := make([]Crop, 0, len(file.Crops))
	for i, crop := range file.Crops {
		crop.Name = NormalizeCropName(crop.Name)
		if crop.Name == "" {
			return nil, fmt.Errorf("model: catalogue entry %d has no name", i)
		}
		if crop.Slug == "" {
			crop.Slug = strings.ToLower(strings.ReplaceAll(crop.Name, " ", "-"))
		}
		if _, dup := seen[crop.Slug]; dup {
			return nil, fmt.Errorf("model: duplicate crop %q", crop.Slug)
		}
		seen[crop.Slug] = struct{}{}
		crops = append(crops, crop)
	}
	return &Catalogue{crops: crops}, nil
}

// Lookup finds a crop by name or slug, ignoring case.
func (c *Catalogue) Lookup(name string) (Crop, bool) {
	if c == nil {
		return Crop{}, false
	}
	name = strings.TrimSpace(name)
	for _, crop := range c.crops {
		if strings.EqualFold(crop.Name, name) || strings.EqualFold(crop.Slug, name) {
			return crop, true
		}
	}
	return Crop{}, false
}

// Names returns crop names in catalogue order.
func (c *Catalogue) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.crops))
	for _, crop := range c.crops {
		names = append(names, crop.Name)
	}
	return names
}

// Crops returns a copy of the catalogue entries.
func (c *Catalogue) Crops() []Crop {
	if c == nil {
		return nil
	}
	out := make([]Crop, len(c.crops))
	copy(out, c.crops)
	return out
}

// NormalizeCropName trims and title-cases a crop name ("maize" -> "Maize").
func NormalizeCropName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	// Casers keep state, so each call gets its own.
	return cases.Title(language.English).String(name)
}
