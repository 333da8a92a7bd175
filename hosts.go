package galera

import (
	"strings"
	"sync"
)

// Hosts is a fixed list of equivalent cluster nodes handed out in round robin order, along with a count of
// the connections currently open against each of them.
//
// A Hosts with no entries is valid; Next always reports no host, and connections are passed through unrouted.
type Hosts struct {
	mu     sync.Mutex
	hosts  []string
	cur    int
	active map[string]int
}

// NewHosts creates a registry over the given hosts, in order
func NewHosts(hosts ...string) *Hosts {
	h := &Hosts{active: map[string]int{}}
	for _, host := range hosts {
		if host != "" {
			h.hosts = append(h.hosts, host)
		}
	}
	return h
}

// ParseHosts creates a registry from a comma-separated list of hosts.
//
// Empty entries are dropped, everything else is kept verbatim.
func ParseHosts(config string) *Hosts {
	if config == "" {
		return NewHosts()
	}
	return NewHosts(strings.Split(config, ",")...)
}

// Next returns the host at the cursor and advances the cursor, or false if there are no hosts
func (h *Hosts) Next() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.hosts) == 0 {
		return "", false
	}
	host := h.hosts[h.cur]
	h.cur = (h.cur + 1) % len(h.hosts)
	return host, true
}

// Increment records a connection opened against host
func (h *Hosts) Increment(host string) {
	h.mu.Lock()
	h.active[host]++
	h.mu.Unlock()
}

// Decrement records a connection to host being closed
func (h *Hosts) Decrement(host string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := h.active[host]
	if !ok {
		return
	}
	if n <= 1 {
		delete(h.active, host)
		return
	}
	h.active[host] = n - 1
}

// Active returns the number of open connections attributed to host
func (h *Hosts) Active(host string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active[host]
}

// Snapshot returns a copy of the per-host open connection counts; hosts without connections are omitted
func (h *Hosts) Snapshot() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := make(map[string]int, len(h.active))
	for host, n := range h.active {
		s[host] = n
	}
	return s
}

// Cursor returns the index of the host the next call to Next will return
func (h *Hosts) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cur
}

// Len returns the number of configured hosts
func (h *Hosts) Len() int {
	return len(h.hosts)
}

// List returns a copy of the configured hosts
func (h *Hosts) List() []string {
	return append([]string(nil), h.hosts...)
}
