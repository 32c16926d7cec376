// Package shop sells material units from the catalog.
package shop

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/player"
)

var (
	ErrInsufficientGold = errors.New("not enough gold")
	ErrUnknownMaterial  = errors.New("the shop does not sell that")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
)

// Shop is the material merchant
type Shop struct {
	catalog *items.Catalog
}

// New creates a shop selling the catalog's templates
func New(catalog *items.Catalog) *Shop {
	return &Shop{catalog: catalog}
}

// Listing returns the templates for display, cheapest tier first
func (s *Shop) Listing() []items.Material {
	return s.catalog.Templates()
}

// Lookup resolves a template ID ("m2") or quality name ("refined")
func (s *Shop) Lookup(key string) (items.Material, error) {
	if m, ok := s.catalog.ByID(key); ok {
		return m, nil
	}
	if q, err := items.ParseQuality(key); err == nil {
		return s.catalog.ByQuality(q), nil
	}
	return items.Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, key)
}

// Buy sells one unit. When the player cannot afford it the purchase is
// declined and the player is left untouched.
func (s *Shop) Buy(p *player.Player, key string) (items.Material, error) {
	bought, err := s.BuyMany(p, key, 1)
	if err != nil {
		return items.Material{}, err
	}
	return bought[0], nil
}

// BuyMany sells qty units in one transaction: all or nothing
func (s *Shop) BuyMany(p *player.Player, key string, qty int) ([]items.Material, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	tmpl, err := s.Lookup(key)
	if err != nil {
		return nil, err
	}

	// checked before multiplying so a huge qty cannot wrap the cost
	if tmpl.Price > 0 && qty > p.GetGold()/tmpl.Price {
		return nil, fmt.Errorf("%w: %d x %s costs more than your %d gold", ErrInsufficientGold, qty, tmpl.Name, p.GetGold())
	}
	cost := tmpl.Price * qty
	if !p.SpendGold(cost) {
		return nil, fmt.Errorf("%w: %s costs %d gold, you have %d", ErrInsufficientGold, tmpl.Name, cost, p.GetGold())
	}

	bought := make([]items.Material, qty)
	for i := range bought {
		bought[i] = tmpl.Instance()
		p.AddMaterial(bought[i])
	}
	return bought, nil
}
