// Package hostinfo holds the Host record and the tool-target / resource-URI
// parsers that turn user-supplied strings into structured values (spec
// §3, §4.1).
package hostinfo

import "fmt"

// Host is an immutable descriptor of one SSH destination. Name is the
// pool key and the URI scheme for that host's resources — it is
// deliberately not hostname:port, so a host can be renamed or moved
// without breaking cached connections or registered routes.
type Host struct {
	Name          string
	Hostname      string
	Port          int
	User          string
	IdentityFile  string // optional path to a private key
	Classification string // "" | "allow" | "block", informational only
}

// Addr returns the "hostname:port" dial target.
func (h Host) Addr() string {
	return fmt.Sprintf("%s:%d", h.Hostname, h.Port)
}

// Table is the immutable set of configured hosts, keyed by name.
type Table struct {
	byName map[string]Host
	order  []string // insertion order, for stable "Available: a, b, c" listings
}

// NewTable builds a Table from a host list, rejecting duplicate names.
func NewTable(hosts []Host) (*Table, error) {
	t := &Table{byName: make(map[string]Host, len(hosts))}
	for _, h := range hosts {
		if _, exists := t.byName[h.Name]; exists {
			return nil, fmt.Errorf("duplicate host name %q", h.Name)
		}
		t.byName[h.Name] = h
		t.order = append(t.order, h.Name)
	}
	return t, nil
}

// Lookup returns the host with the given name.
func (t *Table) Lookup(name string) (Host, bool) {
	h, ok := t.byName[name]
	return h, ok
}

// Names returns host names in load order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// All returns every configured host in load order.
func (t *Table) All() []Host {
	out := make([]Host, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}
	return out
}
