package test

import (
	"fmt"

	"github.com/lawnchairsociety/abyssforge/internal/testclient"
)

// =============================================================================
// Group 4: Community
// =============================================================================

// TestWhoCommand tests that who lists every connected slot
func TestWhoCommand(serverURL string) TestResult {
	const testName = "Who Command"

	first, err := testclient.NewTestClient(newCreds("whoa", ""), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer first.Close()

	second, err := testclient.NewTestClient(newCreds("whob", ""), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer second.Close()

	if !expect(testName, first, "who", second.Name) {
		return fail(testName, "who does not list the other slot")
	}
	if !first.HasMessage(first.Name) {
		return fail(testName, "who does not list the asking slot")
	}
	return pass(testName, "who lists both slots")
}

// TestUptimeCommand tests the uptime command
func TestUptimeCommand(serverURL string) TestResult {
	const testName = "Uptime Command"

	client, err := testclient.NewTestClient(newCreds("uptime", ""), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "uptime", "Server uptime:") {
		return fail(testName, "No uptime reported")
	}
	return pass(testName, "Uptime reported")
}

// TestLeaderboardCommand tests that the leaderboard answers, empty or not
func TestLeaderboardCommand(serverURL string) TestResult {
	const testName = "Leaderboard Command"

	client, err := testclient.NewTestClient(newCreds("board", ""), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	client.ClearMessages()
	client.SendCommand("leaderboard")
	text, ok := client.WaitForAnyMessage([]string{"No boss has fallen yet.", "=== Boss slayers ==="}, replyTimeout)
	logResult(testName, ok, fmt.Sprintf("received %q", text))
	if !ok {
		return fail(testName, "No leaderboard reply")
	}
	return pass(testName, "Leaderboard replied: "+text)
}

// TestHelpCommand tests the command list and topic help
func TestHelpCommand(serverURL string) TestResult {
	const testName = "Help Command"

	client, err := testclient.NewTestClient(newCreds("help", ""), serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "help", "Available commands") {
		return fail(testName, "No command list")
	}
	if !expect(testName, client, "help forge", "FORGE <weapon|armor>") {
		return fail(testName, "No forge help")
	}
	return pass(testName, "Help lists commands and topics")
}
