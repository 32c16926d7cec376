// Package test holds integration scenarios that play against a running
// abyss server through its WebSocket console.
package test

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lawnchairsociety/abyssforge/internal/testclient"
)

// replyTimeout bounds every wait for a command's reply
const replyTimeout = 3 * time.Second

// testPassphrase satisfies the default passphrase policy
const testPassphrase = "forge-test-1"

// uniqueName generates a slot name no earlier run can have taken. Slot
// names are at most 24 characters, so bases should stay short.
func uniqueName(base string) string {
	return base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// newCreds returns fresh credentials for a new slot
func newCreds(base, rules string) testclient.Credentials {
	return testclient.Credentials{Slot: uniqueName(base), Passphrase: testPassphrase, Rules: rules}
}

// Verbose controls whether detailed logging is shown during tests
var Verbose = false

// TestResult represents the result of a test
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

func pass(name, msg string) TestResult {
	return TestResult{Name: name, Passed: true, Message: msg}
}

func fail(name, msg string) TestResult {
	return TestResult{Name: name, Passed: false, Message: msg}
}

// logAction logs a test action when verbose mode is enabled
func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

// logResult logs an expected vs actual result when verbose mode is enabled
func logResult(testName string, success bool, detail string) {
	if Verbose {
		status := "OK"
		if !success {
			status = "FAIL"
		}
		fmt.Printf("  [%s] %s: %s\n", testName, status, detail)
	}
}

// expect sends cmd and reports whether a reply containing want arrived
func expect(testName string, client *testclient.TestClient, cmd, want string) bool {
	logAction(testName, fmt.Sprintf("Sending %q", cmd))
	ok := client.Command(cmd, want, replyTimeout)
	logResult(testName, ok, fmt.Sprintf("expected %q", want))
	return ok
}

// logout quits and closes the connection. The server may still be saving;
// use login to wait for the slot.
func logout(client *testclient.TestClient) {
	client.Command("quit", "Farewell", replyTimeout)
	client.Close()
}

// login loads a save, retrying while a previous connection still holds it
func login(creds testclient.Credentials, serverURL string) (*testclient.TestClient, error) {
	deadline := time.Now().Add(replyTimeout)
	for {
		client, err := testclient.NewTestClientWithLogin(creds, serverURL)
		if err != nil {
			return nil, err
		}
		text, ok := client.WaitForAnyMessage([]string{"Welcome back", "already in play", "Invalid slot"}, replyTimeout)
		if ok && text == "Welcome back" {
			return client, nil
		}
		client.Close()
		if !ok || text == "Invalid slot" || time.Now().After(deadline) {
			return nil, fmt.Errorf("login as %s failed: %q", creds.Slot, text)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// RunAllTests runs every scenario in order
func RunAllTests(serverURL string) []TestResult {
	results := make([]TestResult, 0)

	// Group 1: Connection & Save Slots
	results = append(results, TestBasicConnection(serverURL))
	results = append(results, TestInvalidChoice(serverURL))
	results = append(results, TestReservedSlotName(serverURL))
	results = append(results, TestNewSave(serverURL))
	results = append(results, TestSaveReload(serverURL))
	results = append(results, TestWrongPassphrase(serverURL))
	results = append(results, TestDuplicateLogin(serverURL))

	// Group 2: Town & Forge
	results = append(results, TestShop(serverURL))
	results = append(results, TestInsufficientGold(serverURL))
	results = append(results, TestBuyAndForge(serverURL))
	results = append(results, TestEquipAndSell(serverURL))

	// Group 3: The Abyss
	results = append(results, TestEnterAndWithdraw(serverURL))
	results = append(results, TestTownBlockedInAbyss(serverURL))
	results = append(results, TestProceed(serverURL))
	results = append(results, TestFloorSelectClassic(serverURL))

	// Group 4: Community
	results = append(results, TestWhoCommand(serverURL))
	results = append(results, TestUptimeCommand(serverURL))
	results = append(results, TestLeaderboardCommand(serverURL))
	results = append(results, TestHelpCommand(serverURL))

	return results
}

// PrintResults prints a summary of test results
func PrintResults(results []TestResult) {
	passed := 0
	failed := 0

	fmt.Println("============================================================")
	fmt.Println("Integration Test Results")
	fmt.Println("============================================================")
	fmt.Println()

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("[%s] %s: %s\n", status, r.Name, r.Message)
	}

	fmt.Println()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)
	fmt.Println("------------------------------------------------------------")
}
