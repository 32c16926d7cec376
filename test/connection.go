package test

import (
	"fmt"

	"github.com/lawnchairsociety/abyssforge/internal/testclient"
)

// =============================================================================
// Group 1: Connection & Save Slots
// =============================================================================

// TestBasicConnection tests that clients can connect and see the slot menu
func TestBasicConnection(serverURL string) TestResult {
	const testName = "Basic Connection"

	logAction(testName, "Connecting...")
	client, err := testclient.NewTestClientRaw(serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to connect: %v", err))
	}
	defer client.Close()

	found := client.WaitForMessage("Enter choice", replyTimeout)
	logResult(testName, found, "Received the slot menu")
	if !found {
		return fail(testName, "No slot menu received from server")
	}
	return pass(testName, fmt.Sprintf("Connected successfully, received %d messages", len(client.GetMessages())))
}

// TestInvalidChoice tests that an unknown menu choice is refused
func TestInvalidChoice(serverURL string) TestResult {
	const testName = "Invalid Menu Choice"

	client, err := testclient.NewTestClientRaw(serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to connect: %v", err))
	}
	defer client.Close()

	client.WaitForMessage("Enter choice", replyTimeout)
	if !expect(testName, client, "x", "Invalid choice") {
		return fail(testName, "Unknown choice was not refused")
	}
	return pass(testName, "Unknown choice refused")
}

// TestReservedSlotName tests that the name filter guards new slots
func TestReservedSlotName(serverURL string) TestResult {
	const testName = "Reserved Slot Name"

	client, err := testclient.NewTestClientRaw(serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to connect: %v", err))
	}
	defer client.Close()

	client.WaitForMessage("Enter choice", replyTimeout)
	if !expect(testName, client, "n", "Choose a slot name") {
		return fail(testName, "No slot name prompt")
	}
	if !expect(testName, client, "4dm1n", "reserved") {
		return fail(testName, "Reserved slot name was accepted")
	}
	return pass(testName, "Reserved slot name refused")
}

// TestNewSave tests that a fresh save starts with the preset's gold
func TestNewSave(serverURL string) TestResult {
	const testName = "New Save"

	creds := newCreds("new", "classic")
	logAction(testName, fmt.Sprintf("Creating slot '%s'...", creds.Slot))
	client, err := testclient.NewTestClient(creds, serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer client.Close()

	if !expect(testName, client, "status", "Gold: 200") {
		return fail(testName, "Fresh classic save should have 200 gold")
	}
	return pass(testName, "Save created with starting gold")
}

// TestSaveReload tests that purchases survive logging out and back in
func TestSaveReload(serverURL string) TestResult {
	const testName = "Save Reload"

	creds := newCreds("reload", "classic")
	client, err := testclient.NewTestClient(creds, serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	if !expect(testName, client, "buy common 2", "You buy 2") {
		client.Close()
		return fail(testName, "Purchase failed")
	}
	logout(client)

	logAction(testName, "Logging back in...")
	client, err = login(creds, serverURL)
	if err != nil {
		return fail(testName, err.Error())
	}
	defer client.Close()

	if !expect(testName, client, "status", "Gold: 180") {
		return fail(testName, "Gold was not saved")
	}
	if !expect(testName, client, "bag", "x2") {
		return fail(testName, "Materials were not saved")
	}
	return pass(testName, "Gold and materials persisted")
}

// TestWrongPassphrase tests that a bad passphrase is refused
func TestWrongPassphrase(serverURL string) TestResult {
	const testName = "Wrong Passphrase"

	creds := newCreds("wrong", "")
	client, err := testclient.NewTestClient(creds, serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	logout(client)

	bad := creds
	bad.Passphrase = "not-the-passphrase"
	client, err = testclient.NewTestClientWithLogin(bad, serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to connect: %v", err))
	}
	defer client.Close()

	found := client.WaitForMessage("Invalid slot or passphrase", replyTimeout)
	logResult(testName, found, "Login refused")
	if !found {
		return fail(testName, "Wrong passphrase was accepted")
	}
	return pass(testName, "Wrong passphrase refused")
}

// TestDuplicateLogin tests that a save cannot be played twice at once
func TestDuplicateLogin(serverURL string) TestResult {
	const testName = "Duplicate Login"

	creds := newCreds("dupe", "")
	first, err := testclient.NewTestClient(creds, serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to create save: %v", err))
	}
	defer first.Close()

	second, err := testclient.NewTestClientWithLogin(creds, serverURL)
	if err != nil {
		return fail(testName, fmt.Sprintf("Failed to connect: %v", err))
	}
	defer second.Close()

	found := second.WaitForMessage("already in play", replyTimeout)
	logResult(testName, found, "Second login refused")
	if !found {
		return fail(testName, "Second login was not refused")
	}
	if !expect(testName, first, "status", creds.Slot) {
		return fail(testName, "First session stopped responding")
	}
	return pass(testName, "Second login refused, first session unaffected")
}
