package test

import (
	"fmt"

	"github.com/lawnchairsociety/abyssforge/internal/testclient"
)

// =============================================================================
// Group 3: The Abyss
// =============================================================================

// TestEnterAndWithdraw tests a minimal expedition and its history record
func TestEnterAndWithdraw(serverURL string) TestResult {
	const testName = "Enter and Withdraw"

	client, err := testclient.NewTestClient(newCreds("dive", "classic"), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "history", "not finished any expeditions") {
		return fail(testName, "Fresh save should have no history")
	}
	if !expect(testName, client, "enter", "You step into the abyss at depth 0") {
		return fail(testName, "Could not enter the abyss")
	}
	if !expect(testName, client, "withdraw", "You return to town with 0 gold") {
		return fail(testName, "Could not withdraw")
	}
	if !expect(testName, client, "history", "withdrew") {
		return fail(testName, "Expedition missing from history")
	}
	return pass(testName, "Expedition started, withdrawn and recorded")
}

// TestTownBlockedInAbyss tests that the shop is closed during an expedition
func TestTownBlockedInAbyss(serverURL string) TestResult {
	const testName = "Town Blocked In Abyss"

	client, err := testclient.NewTestClient(newCreds("blocked", ""), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "enter", "You step into the abyss") {
		return fail(testName, "Could not enter the abyss")
	}
	if !expect(testName, client, "buy common", "withdraw first") {
		return fail(testName, "Shopping in the abyss was allowed")
	}
	if !expect(testName, client, "enter", "withdraw first") {
		return fail(testName, "A second expedition was allowed")
	}
	return pass(testName, "Town actions refused during an expedition")
}

// TestProceed tests that proceeding reaches depth 1 and the log records it
func TestProceed(serverURL string) TestResult {
	const testName = "Proceed"

	client, err := testclient.NewTestClient(newCreds("deeper", ""), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "enter", "You step into the abyss") {
		return fail(testName, "Could not enter the abyss")
	}
	if !expect(testName, client, "proceed", "Depth 1:") {
		return fail(testName, "Proceed did not reach depth 1")
	}
	if !expect(testName, client, "log", "depth 0") {
		return fail(testName, "Expedition log is missing the start")
	}
	return pass(testName, "Reached depth 1")
}

// TestFloorSelectClassic tests that classic rules only start at the surface
func TestFloorSelectClassic(serverURL string) TestResult {
	const testName = "Floor Select (Classic)"

	client, err := testclient.NewTestClient(newCreds("floor", "classic"), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "enter 1", "always start at the surface") {
		return fail(testName, "Classic rules allowed a deeper start")
	}
	return pass(testName, "Classic rules refuse start floors")
}
