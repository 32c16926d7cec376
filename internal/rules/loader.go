package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

// FileConfig is the YAML shape of a ruleset override file. Zero values keep
// the preset's setting.
type FileConfig struct {
	Preset            string                `yaml:"preset"`
	StartingGold      *int                  `yaml:"starting_gold"`
	BaseStats         *stats.Block          `yaml:"base_stats"`
	StartingThreshold int                   `yaml:"experience_threshold"`
	LogLimit          int                   `yaml:"log_limit"`
	ForgeSlots        int                   `yaml:"forge_slots"`
	GrantGold         *int                  `yaml:"grant_gold"`
	GrantExperience   *int                  `yaml:"grant_experience"`
	Materials         string                `yaml:"materials"`
	Stats             map[string]stats.Spec `yaml:"stats"`
}

// Load builds a ruleset from a YAML file. A relative materials path is
// resolved against the file's directory.
func Load(filename string) (*Ruleset, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	if fc.Materials != "" && !filepath.IsAbs(fc.Materials) {
		fc.Materials = filepath.Join(filepath.Dir(filename), fc.Materials)
	}
	return fc.Apply()
}

// Apply overlays the file settings on the named preset
func (fc FileConfig) Apply() (*Ruleset, error) {
	r, err := ByName(fc.Preset)
	if err != nil {
		return nil, err
	}

	if fc.StartingGold != nil {
		r.StartingGold = *fc.StartingGold
	}
	if fc.BaseStats != nil {
		r.BaseStats = *fc.BaseStats
	}
	if fc.StartingThreshold > 0 {
		r.StartingThreshold = fc.StartingThreshold
	}
	if fc.LogLimit > 0 {
		r.LogLimit = fc.LogLimit
	}
	if fc.ForgeSlots > 0 {
		r.ForgeSlots = fc.ForgeSlots
	}
	if fc.GrantGold != nil {
		r.GrantGold = *fc.GrantGold
	}
	if fc.GrantExperience != nil {
		r.GrantExperience = *fc.GrantExperience
	}

	for name, spec := range fc.Stats {
		kind, err := stats.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("rules stats: %w", err)
		}
		r.Stats[kind] = spec
	}

	if fc.Materials != "" {
		catalog, err := items.LoadCatalog(fc.Materials)
		if err != nil {
			return nil, err
		}
		r.Catalog = catalog
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
