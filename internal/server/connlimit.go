package server

import (
	"net"
	"sync"

	"github.com/lawnchairsociety/abyssforge/internal/config"
)

// Rejection reasons reported by ConnLimiter
const (
	rejectTotal = "total"
	rejectPerIP = "per_ip"
)

// ConnLimiter caps connections per IP and in total. A zero limit means
// unlimited.
type ConnLimiter struct {
	mu       sync.Mutex
	perIP    map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

// NewConnLimiter creates a limiter from the connections config
func NewConnLimiter(cfg config.ConnectionsConfig) *ConnLimiter {
	return &ConnLimiter{
		perIP:    make(map[string]int),
		maxPerIP: cfg.MaxPerIP,
		maxTotal: cfg.MaxTotal,
	}
}

// TryAcquire takes a slot for ip. When refused, the reason names the limit
// that was hit.
func (c *ConnLimiter) TryAcquire(ip string) (ok bool, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxTotal > 0 && c.total >= c.maxTotal {
		return false, rejectTotal
	}
	if c.maxPerIP > 0 && c.perIP[ip] >= c.maxPerIP {
		return false, rejectPerIP
	}
	c.perIP[ip]++
	c.total++
	return true, ""
}

// Release gives back a slot taken by TryAcquire
func (c *ConnLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.perIP[ip] > 0 {
		c.perIP[ip]--
		if c.perIP[ip] == 0 {
			delete(c.perIP, ip)
		}
	}
	if c.total > 0 {
		c.total--
	}
}

// Stats returns the open connection count and the number of distinct IPs
func (c *ConnLimiter) Stats() (total int, ips int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total, len(c.perIP)
}

// Count returns the open connections for one IP
func (c *ConnLimiter) Count(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perIP[ip]
}

// hostOnly strips the port from an ip:port address
func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
