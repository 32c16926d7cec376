package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawnchairsociety/abyssforge/internal/items"
	"github.com/lawnchairsociety/abyssforge/internal/player"
	"github.com/lawnchairsociety/abyssforge/internal/rules"
)

func newShop() (*Shop, *player.Player) {
	r := rules.Classic()
	return New(r.Catalog), player.New(r)
}

func TestBuy(t *testing.T) {
	s, p := newShop()

	m, err := s.Buy(p, "refined")
	require.NoError(t, err)
	assert.Equal(t, items.Refined, m.Quality)
	assert.NotEqual(t, "m2", m.ID)
	assert.Equal(t, 150, p.Gold)
	require.Len(t, p.Materials, 1)
	assert.Equal(t, m.ID, p.Materials[0].ID)

	m2, err := s.Buy(p, "m2")
	require.NoError(t, err)
	assert.NotEqual(t, m.ID, m2.ID)
}

func TestBuyInsufficientGoldLeavesPlayerUntouched(t *testing.T) {
	s, p := newShop()
	p.Gold = 199

	_, err := s.Buy(p, "rare")
	assert.ErrorIs(t, err, ErrInsufficientGold)
	assert.Equal(t, 199, p.Gold)
	assert.Empty(t, p.Materials)
}

func TestBuyMany(t *testing.T) {
	s, p := newShop()

	bought, err := s.BuyMany(p, "common", 5)
	require.NoError(t, err)
	assert.Len(t, bought, 5)
	assert.Equal(t, 150, p.Gold)

	_, err = s.BuyMany(p, "refined", 4)
	assert.ErrorIs(t, err, ErrInsufficientGold)
	assert.Len(t, p.Materials, 5)
	assert.Equal(t, 150, p.Gold)

	_, err = s.BuyMany(p, "common", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestBuyUnknown(t *testing.T) {
	s, p := newShop()
	_, err := s.Buy(p, "mithril")
	assert.ErrorIs(t, err, ErrUnknownMaterial)
	assert.Equal(t, 200, p.Gold)
}

func TestListing(t *testing.T) {
	s, _ := newShop()
	list := s.Listing()
	require.Len(t, list, 3)
	assert.Equal(t, []int{10, 50, 200}, []int{list[0].Price, list[1].Price, list[2].Price})
}

func TestBuyManyHugeQuantityDoesNotWrap(t *testing.T) {
	s, p := newShop()

	// 10 * qty overflows to 4 gold
	_, err := s.BuyMany(p, "common", 1844674407370955162)
	assert.ErrorIs(t, err, ErrInsufficientGold)
	assert.Equal(t, 200, p.Gold)
	assert.Empty(t, p.Materials)
}
