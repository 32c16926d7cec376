package test

import (
	"fmt"

	"github.com/lawnchairsociety/abyssforge/internal/testclient"
)

// =============================================================================
// Group 2: Town & Forge
// =============================================================================

// TestShop tests that the shop lists the material catalog
func TestShop(serverURL string) TestResult {
	const testName = "Shop Listing"

	client, err := testclient.NewTestClient(newCreds("shop", ""), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "shop", "Material shop") {
		return fail(testName, "Shop listing missing")
	}
	for _, quality := range []string{"common", "refined", "rare"} {
		if !client.HasMessage(quality) {
			return fail(testName, fmt.Sprintf("Shop does not list %s materials", quality))
		}
	}
	return pass(testName, "Shop lists every quality")
}

// TestInsufficientGold tests that an unaffordable purchase costs nothing
func TestInsufficientGold(serverURL string) TestResult {
	const testName = "Insufficient Gold"

	client, err := testclient.NewTestClient(newCreds("broke", "classic"), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "buy rare 2", "enough gold") {
		return fail(testName, "Unaffordable purchase was not declined")
	}
	if !expect(testName, client, "status", "Gold: 200") {
		return fail(testName, "Declined purchase still cost gold")
	}
	return pass(testName, "Purchase declined, gold untouched")
}

// TestBuyAndForge tests the basic forge loop
func TestBuyAndForge(serverURL string) TestResult {
	const testName = "Buy and Forge"

	client, err := testclient.NewTestClient(newCreds("smith", "classic"), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "buy common 3", "You buy 3") {
		return fail(testName, "Purchase failed")
	}
	if !expect(testName, client, "forge weapon common common common", "The forge roars") {
		return fail(testName, "Forging failed")
	}
	if !expect(testName, client, "forge weapon common", "material") {
		return fail(testName, "Forging without materials should fail")
	}
	if !expect(testName, client, "stats", "Items forged:    1") {
		return fail(testName, "Lifetime statistics did not count the forge")
	}
	return pass(testName, "Bought materials and forged a weapon")
}

// TestEquipAndSell tests equipping and selling forged gear
func TestEquipAndSell(serverURL string) TestResult {
	const testName = "Equip and Sell"

	client, err := testclient.NewTestClient(newCreds("gear", "classic"), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	steps := []struct{ cmd, want string }{
		{"buy common 6", "You buy 6"},
		{"forge weapon common common common", "The forge roars"},
		{"forge armor common common common", "The forge roars"},
		{"equip 1", "You equip"},
		{"sell 1", "equipped"},
		{"sell 2", "You sell"},
		{"unequip weapon", "You take off"},
	}
	for _, step := range steps {
		if !expect(testName, client, step.cmd, step.want) {
			return fail(testName, fmt.Sprintf("%q did not reply %q", step.cmd, step.want))
		}
	}
	return pass(testName, "Equipped, sold and unequipped gear")
}
