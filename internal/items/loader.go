package items

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// CatalogConfig represents the structure of the materials.yaml file
type CatalogConfig struct {
	Materials []Material `yaml:"materials"`
}

// Catalog is the set of material templates the shop sells and the
// dungeon drops. There is exactly one template per quality.
type Catalog struct {
	templates []Material
}

// DefaultCatalog returns the stock three-ore catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Material{
		{ID: "m1", Quality: Common, Name: "普通的矿石", Price: 10},
		{ID: "m2", Quality: Refined, Name: "优质的矿石", Price: 50},
		{ID: "m3", Quality: Rare, Name: "稀有的矿石", Price: 200},
	})
	if err != nil {
		panic(fmt.Sprintf("items: default catalog: %v", err))
	}
	return c
}

// NewCatalog validates templates and builds a catalog sorted by quality
func NewCatalog(templates []Material) (*Catalog, error) {
	seen := make(map[Quality]bool)
	ids := make(map[string]bool)
	for _, m := range templates {
		if !m.Quality.Valid() {
			return nil, fmt.Errorf("material %q: invalid quality %d", m.ID, int(m.Quality))
		}
		if m.ID == "" {
			return nil, fmt.Errorf("material %q: missing id", m.Name)
		}
		if ids[m.ID] {
			return nil, fmt.Errorf("duplicate material id %q", m.ID)
		}
		if seen[m.Quality] {
			return nil, fmt.Errorf("duplicate template for quality %s", m.Quality)
		}
		if m.Price < 0 {
			return nil, fmt.Errorf("material %q: negative price", m.ID)
		}
		seen[m.Quality] = true
		ids[m.ID] = true
	}
	for _, q := range Qualities {
		if !seen[q] {
			return nil, fmt.Errorf("catalog has no %s material", q)
		}
	}

	sorted := append([]Material(nil), templates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Quality < sorted[j].Quality })
	return &Catalog{templates: sorted}, nil
}

// LoadCatalog loads material templates from a YAML file
func LoadCatalog(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read materials file: %w", err)
	}

	var config CatalogConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse materials YAML: %w", err)
	}

	return NewCatalog(config.Materials)
}

// Templates returns the catalog entries ordered by quality
func (c *Catalog) Templates() []Material {
	return append([]Material(nil), c.templates...)
}

// ByID looks up a template by its template ID
func (c *Catalog) ByID(id string) (Material, bool) {
	for _, m := range c.templates {
		if m.ID == id {
			return m, true
		}
	}
	return Material{}, false
}

// ByQuality returns the template for a tier
func (c *Catalog) ByQuality(q Quality) Material {
	for _, m := range c.templates {
		if m.Quality == q {
			return m
		}
	}
	return Material{}
}

// Cost returns the price of one unit of the given tier
func (c *Catalog) Cost(q Quality) int {
	return c.ByQuality(q).Price
}

// TotalCost sums the price of every quality in qs
func (c *Catalog) TotalCost(qs []Quality) int {
	total := 0
	for _, q := range qs {
		total += c.Cost(q)
	}
	return total
}
