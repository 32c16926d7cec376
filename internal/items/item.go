// Package items holds materials, forged equipment and the material catalog.
package items

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/abyssforge/internal/stats"
)

// Material is one unit of forging ore. Every unit carries its own ID, so two
// units of the same template are never stacked.
type Material struct {
	ID      string  `json:"id" yaml:"id"`
	Quality Quality `json:"quality" yaml:"quality"`
	Name    string  `json:"name" yaml:"name"`
	Price   int     `json:"price" yaml:"price"`
}

// Instance returns a copy of the template with a fresh identifier
func (m Material) Instance() Material {
	m.ID = uuid.NewString()
	return m
}

// String renders the material for listings
func (m Material) String() string {
	return fmt.Sprintf("%s [%s] (%s)", m.Name, m.Quality.DisplayName(), ShortID(m.ID))
}

// Equipment is a forged weapon or armor piece. Equipment is immutable once
// forged; callers pass it by value.
type Equipment struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Slot          Slot          `json:"type"`
	Quality       Quality       `json:"quality"`
	Stats         []stats.Entry `json:"stats"`
	Value         int           `json:"value"`
	MaterialsUsed []Quality     `json:"materialsUsed"`
}

// Bonus sums the equipment's stat entries into a block
func (e Equipment) Bonus() stats.Block {
	return stats.Block{}.AddAll(e.Stats)
}

// Clone returns a deep copy so slices are not shared between owners
func (e Equipment) Clone() Equipment {
	e.Stats = append([]stats.Entry(nil), e.Stats...)
	e.MaterialsUsed = append([]Quality(nil), e.MaterialsUsed...)
	return e
}

// Describe renders the item with its stat lines
func (e Equipment) Describe() string {
	parts := make([]string, 0, len(e.Stats))
	for _, s := range e.Stats {
		parts = append(parts, s.String())
	}
	return fmt.Sprintf("%s (%s) [%s] %dG", e.Name, ShortID(e.ID), strings.Join(parts, ", "), e.Value)
}

// ShortID trims an identifier to the prefix shown to players
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
