package server

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WebSocketClient wraps a WebSocket connection. Reads come from the owning
// connection goroutine; writes may also come from broadcasts, so they are
// serialized.
type WebSocketClient struct {
	conn    *websocket.Conn
	ip      string
	readBuf []string
	writeMu sync.Mutex
}

// NewWebSocketClient wraps conn. maxMessage caps inbound message size; 0
// leaves the library default.
func NewWebSocketClient(conn *websocket.Conn, ip string, maxMessage int64) *WebSocketClient {
	if maxMessage > 0 {
		conn.SetReadLimit(maxMessage)
	}
	return &WebSocketClient{conn: conn, ip: ip}
}

// ReadLine returns the next non-empty line. A message holding several lines
// is buffered and handed out one line at a time.
func (c *WebSocketClient) ReadLine() (string, error) {
	for len(c.readBuf) == 0 {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(string(message), "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				c.readBuf = append(c.readBuf, trimmed)
			}
		}
	}

	line := c.readBuf[0]
	c.readBuf = c.readBuf[1:]
	return line, nil
}

// WriteLine sends message as one text frame
func (c *WebSocketClient) WriteLine(message string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(message))
}

// Close sends a close frame and closes the connection
func (c *WebSocketClient) Close() error {
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *WebSocketClient) RemoteAddr() string {
	return c.ip
}
