// Package testclient drives the abyss server's WebSocket console the way a
// player would. It is used by the integration scenarios in test/.
package testclient

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// promptTimeout bounds every wait during the save selection flow
const promptTimeout = 3 * time.Second

// TestClient represents a test client connection to the abyss server
type TestClient struct {
	Name     string
	conn     *websocket.Conn
	writeMu  sync.Mutex
	messages []string
	mu       sync.Mutex
	closed   sync.Once
}

// Credentials identify a save slot
type Credentials struct {
	Slot       string
	Passphrase string
	Rules      string // only used when creating; empty takes the server default
}

// newClientConnection dials the console without choosing anything
func newClientConnection(url string) (*TestClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	client := &TestClient{conn: conn}
	go client.readMessages()
	return client, nil
}

// NewTestClient creates a fresh save with the given credentials and stays
// logged in to it.
func NewTestClient(creds Credentials, url string) (*TestClient, error) {
	client, err := newClientConnection(url)
	if err != nil {
		return nil, err
	}
	client.Name = creds.Slot

	rules := creds.Rules
	if rules == "" {
		rules = "default"
	}
	steps := []struct {
		prompt string
		reply  string
	}{
		{"Enter choice", "n"},
		{"Choose a slot name", creds.Slot},
		{"Choose a passphrase", creds.Passphrase},
		{"Confirm passphrase", creds.Passphrase},
		{"Rules [", rules},
	}
	if err := client.answer(steps); err != nil {
		client.Close()
		return nil, err
	}

	if !client.WaitForMessage("Save created!", promptTimeout) {
		messages := client.GetMessages()
		client.Close()
		return nil, fmt.Errorf("failed to create save, messages: %v", messages)
	}
	return client, nil
}

// NewTestClientWithLogin loads an existing save
func NewTestClientWithLogin(creds Credentials, url string) (*TestClient, error) {
	client, err := newClientConnection(url)
	if err != nil {
		return nil, err
	}
	client.Name = creds.Slot

	steps := []struct {
		prompt string
		reply  string
	}{
		{"Enter choice", "l"},
		{"Slot:", creds.Slot},
		{"Passphrase:", creds.Passphrase},
	}
	if err := client.answer(steps); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// NewTestClientRaw creates a raw connection that has not chosen anything.
// Use this for testing the save selection flow itself.
func NewTestClientRaw(url string) (*TestClient, error) {
	client, err := newClientConnection(url)
	if err != nil {
		return nil, err
	}
	client.Name = "RawClient"
	return client, nil
}

// answer waits for each prompt in turn and replies to it
func (c *TestClient) answer(steps []struct {
	prompt string
	reply  string
}) error {
	for _, step := range steps {
		if !c.WaitForMessage(step.prompt, promptTimeout) {
			return fmt.Errorf("prompt %q never arrived, messages: %v", step.prompt, c.GetMessages())
		}
		if err := c.SendCommand(step.reply); err != nil {
			return fmt.Errorf("failed to answer %q: %w", step.prompt, err)
		}
	}
	return nil
}

// readMessages collects every non-empty line the server sends
func (c *TestClient) readMessages() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.mu.Lock()
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) != "" {
				c.messages = append(c.messages, line)
			}
		}
		c.mu.Unlock()
	}
}

// SendCommand sends one line to the server
func (c *TestClient) SendCommand(cmd string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(cmd))
}

// GetMessages returns all messages received so far
func (c *TestClient) GetMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]string, len(c.messages))
	copy(result, c.messages)
	return result
}

// GetLastMessages returns the last N messages
func (c *TestClient) GetLastMessages(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > len(c.messages) {
		n = len(c.messages)
	}
	result := make([]string, n)
	copy(result, c.messages[len(c.messages)-n:])
	return result
}

// GetLastMessage returns the most recent message
func (c *TestClient) GetLastMessage() string {
	if messages := c.GetLastMessages(1); len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// ClearMessages clears the message buffer
func (c *TestClient) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// HasMessage checks if any message contains the specified text
func (c *TestClient) HasMessage(text string) bool {
	for _, msg := range c.GetMessages() {
		if strings.Contains(msg, text) {
			return true
		}
	}
	return false
}

// WaitForMessage waits for a message containing the specified text
func (c *TestClient) WaitForMessage(text string, timeout time.Duration) bool {
	_, ok := c.WaitForAnyMessage([]string{text}, timeout)
	return ok
}

// WaitForAnyMessage waits for any of the specified texts and returns the
// one that arrived
func (c *TestClient) WaitForAnyMessage(texts []string, timeout time.Duration) (string, bool) {
	deadline := time.Now().Add(timeout)
	for {
		for _, msg := range c.GetMessages() {
			for _, text := range texts {
				if strings.Contains(msg, text) {
					return text, true
				}
			}
		}
		if !time.Now().Before(deadline) {
			return "", false
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// Command sends cmd and waits for a reply containing want
func (c *TestClient) Command(cmd, want string, timeout time.Duration) bool {
	c.ClearMessages()
	if err := c.SendCommand(cmd); err != nil {
		return false
	}
	return c.WaitForMessage(want, timeout)
}

// Close closes the client connection. It is safe to call more than once.
func (c *TestClient) Close() error {
	var err error
	c.closed.Do(func() {
		c.writeMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// PrintMessages prints all messages (for debugging)
func (c *TestClient) PrintMessages() {
	fmt.Printf("\n=== Messages for %s ===\n", c.Name)
	for i, msg := range c.GetMessages() {
		fmt.Printf("[%d] %s\n", i, msg)
	}
	fmt.Println("======================")
}
