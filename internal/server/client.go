package server

// Client is one player connection. ReadLine blocks until the player sends
// a non-empty line; WriteLine sends one message.
type Client interface {
	ReadLine() (string, error)
	WriteLine(message string) error
	Close() error

	// RemoteAddr is the client IP used for limits and logs
	RemoteAddr() string
}
