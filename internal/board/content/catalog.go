// Package content ships the embedded aura preset catalog. Presets seed new
// auras with a sensible radius and colour so players rarely type either by
// hand.
package content

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/tabletop.space/internal/board/shape"
	apperrors "github.com/louisbranch/tabletop.space/internal/errors"
)

//go:embed presets.yaml
var embeddedPresets []byte

// Preset is one catalog entry used to seed new auras.
type Preset struct {
	Name   string `yaml:"name"`
	Radius int    `yaml:"radius"`
	Colour string `yaml:"colour"`
}

// Catalog is a validated set of aura presets.
type Catalog struct {
	Presets []Preset `yaml:"presets"`
}

// Load parses and validates a catalog document.
func Load(raw []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return Catalog{}, apperrors.Wrap(apperrors.CodeCatalogInvalidPreset, "parse preset catalog", err)
	}
	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}

// LoadEmbedded returns the catalog shipped with the binary.
func LoadEmbedded() (Catalog, error) {
	return Load(embeddedPresets)
}

// ValidateEmbedded checks the shipped catalog. Called at startup so a bad
// build fails before it serves anything.
func ValidateEmbedded() error {
	_, err := LoadEmbedded()
	return err
}

// Validate checks every preset and rejects duplicate names.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Presets))
	for _, preset := range c.Presets {
		name := strings.TrimSpace(preset.Name)
		if name == "" {
			return apperrors.New(apperrors.CodeCatalogInvalidPreset, "preset name is required")
		}
		if preset.Radius <= 0 {
			return apperrors.WithMetadata(apperrors.CodeCatalogInvalidPreset,
				"preset radius must be positive", map[string]string{"preset": name})
		}
		if strings.TrimSpace(preset.Colour) == "" {
			return apperrors.WithMetadata(apperrors.CodeCatalogInvalidPreset,
				"preset colour is required", map[string]string{"preset": name})
		}
		if _, dup := seen[name]; dup {
			return apperrors.WithMetadata(apperrors.CodeCatalogDuplicatePreset,
				"duplicate preset name", map[string]string{"preset": name})
		}
		seen[name] = struct{}{}
	}
	return nil
}

// PresetByName returns the named preset, if present.
func (c Catalog) PresetByName(name string) (Preset, bool) {
	for _, preset := range c.Presets {
		if preset.Name == name {
			return preset, true
		}
	}
	return Preset{}, false
}

// Aura seeds an aura from the preset. The caller supplies identity.
func (p Preset) Aura(id string, shapeID string) shape.Aura {
	return shape.Aura{
		ID:     id,
		Shape:  shapeID,
		Name:   p.Name,
		Radius: p.Radius,
		Colour: p.Colour,
	}
}
