// Package dispatch implements the entry point for tool calls and
// resource reads (spec §4.6, §4.7, component C8): it runs the
// middleware chain around the router/executor flow and enforces the
// tool-vs-resource error contract — tools never raise, resources may
// raise ResourceNotFound/ResourceError.
package dispatch

import (
	"fmt"
	"strings"
	"time"

	"scout-gateway/internal/hostinfo"
	"scout-gateway/internal/middleware"
	"scout-gateway/internal/probe"
	"scout-gateway/internal/router"
	"scout-gateway/internal/scouterr"
	"scout-gateway/internal/sshpool"
)

// Config carries the small set of operation-level knobs the dispatcher
// needs from spec §6 (the rest live in internal/config, which is also
// the thing that populates this struct).
type Config struct {
	MaxFileSize    int
	CommandTimeout int // seconds
	ProbeTimeout   time.Duration
}

// Dispatcher wires the host table, pool, router, and middleware chain
// together. It is an explicit value, not a process-wide singleton (spec
// §9 re-architecture note: "make Config and Pool explicit values owned
// by the dispatcher").
type Dispatcher struct {
	hosts  *hostinfo.Table
	pool   *sshpool.Pool
	router *router.Router
	chain  *middleware.Chain
	cfg    Config
}

// New builds a Dispatcher from its collaborators.
func New(hosts *hostinfo.Table, pool *sshpool.Pool, rt *router.Router, chain *middleware.Chain, cfg Config) *Dispatcher {
	return &Dispatcher{hosts: hosts, pool: pool, router: rt, chain: chain, cfg: cfg}
}

func (d *Dispatcher) availableHostsList() string {
	return strings.Join(d.hosts.Names(), ", ")
}

// resolveHost looks up name, returning a wrappedErr carrying the exact
// spec §4.6 unknown-host message when it is absent.
func (d *Dispatcher) resolveHost(name string) (hostinfo.Host, error) {
	h, ok := d.hosts.Lookup(name)
	if !ok {
		return hostinfo.Host{}, wrap(scouterr.ErrUnknownHost, "Unknown host '%s'. Available: %s", name, d.availableHostsList())
	}
	return h, nil
}

// session acquires a connection via the pool's one-retry helper (spec
// §4.3/§4.7), translating a failure into the dispatcher's own
// ConnectFailed message shape.
func (d *Dispatcher) session(h hostinfo.Host) (*sshpool.Session, error) {
	sess, err := d.pool.GetWithRetry(h)
	if err != nil {
		return nil, wrap(scouterr.ErrConnectFailed, "Could not connect to '%s': %s", h.Name, err.Error())
	}
	return sess, nil
}

// probeHosts runs the connectivity probe (spec §4.2) across every
// configured host.
func (d *Dispatcher) probeHosts() map[string]bool {
	endpoints := make([]probe.Endpoint, 0, len(d.hosts.All()))
	for _, h := range d.hosts.All() {
		endpoints = append(endpoints, probe.Endpoint{Name: h.Name, Addr: h.Addr()})
	}
	return probe.Probe(endpoints, d.cfg.ProbeTimeout)
}

func formatHostsListing(hosts []hostinfo.Host, online map[string]bool) string {
	lines := make([]string, 0, len(hosts))
	for _, h := range hosts {
		status := "offline"
		if online[h.Name] {
			status = "online"
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s@%s:%d)", h.Name, status, h.User, h.Hostname, h.Port))
	}
	return strings.Join(lines, "\n")
}
