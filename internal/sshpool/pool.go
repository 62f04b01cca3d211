// Package sshpool gives callers one reusable, idle-reaped SSH session per
// host, with single-retry self-healing (spec §4.3, component C4).
//
// The pool mirrors the lazy-reaper idiom used by session pooling
// elsewhere in this codebase's lineage (spawn on first insert, wake every
// half idle timeout, self-terminate when empty) but keys entries by host
// name rather than by transport session, matching spec §3's
// PooledConnection data model one-to-one.
package sshpool

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"scout-gateway/internal/hostinfo"
	"scout-gateway/internal/scouterr"
)

const (
	// DefaultIdleTimeout matches spec §6 SCOUT_IDLE_TIMEOUT's default.
	DefaultIdleTimeout = 60 * time.Second
	// DefaultDialTimeout bounds the SSH handshake itself.
	DefaultDialTimeout = 10 * time.Second
)

// entry is the PooledConnection of spec §3: a session plus its last-used
// timestamp. is_stale is derived, not stored — Session.IsStale() asks the
// transport directly rather than trusting a cached bit.
type entry struct {
	session  *Session
	lastUsed time.Time
}

// Pool is a host-keyed SSH connection pool. The zero value is not usable;
// construct with New.
type Pool struct {
	mu      sync.Mutex
	entries map[string]*entry

	idleTimeout time.Duration
	dialTimeout time.Duration

	// MaxHosts caps the number of live entries. Zero means unbounded,
	// matching spec §9's "the source imposes none" default. When set and
	// the cap is reached, Get rejects rather than queuing (spec §9 open
	// question, decided in SPEC_FULL.md §5).
	MaxHosts int

	// HostKeyCallback controls SSH host-key verification. Defaults to
	// ssh.InsecureIgnoreHostKey() if left nil, matching the source's
	// default (spec §9 open question — left configurable, not silently
	// changed).
	HostKeyCallback ssh.HostKeyCallback

	reaperRunning bool
	stopReaper    chan struct{}
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithIdleTimeout overrides the default 60s idle window.
func WithIdleTimeout(d time.Duration) Option {
	return func(p *Pool) { p.idleTimeout = d }
}

// WithDialTimeout overrides the default SSH handshake timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(p *Pool) { p.dialTimeout = d }
}

// WithMaxHosts sets the live-entry cap (0 = unbounded).
func WithMaxHosts(n int) Option {
	return func(p *Pool) { p.MaxHosts = n }
}

// WithHostKeyCallback overrides host-key verification policy.
func WithHostKeyCallback(cb ssh.HostKeyCallback) Option {
	return func(p *Pool) { p.HostKeyCallback = cb }
}

// New builds an empty Pool. The idle reaper is not started until the
// first entry is inserted.
func New(opts ...Option) *Pool {
	p := &Pool{
		entries:     make(map[string]*entry),
		idleTimeout: DefaultIdleTimeout,
		dialTimeout: DefaultDialTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns a live, non-stale session for host. A cached non-stale
// entry has its last-used timestamp refreshed and is returned directly;
// otherwise a new SSH session is dialed, stored, and returned.
//
// The pool mutex is held across the dial (spec §4.3: "concurrent opens to
// different hosts serialize, in exchange for simple correctness and
// collapsing duplicate opens to the same host"). It is never held across
// a caller-supplied continuation — Get returns before the caller uses the
// session.
func (p *Pool) Get(h hostinfo.Host) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[h.Name]; ok {
		if !e.session.IsStale() {
			e.lastUsed = time.Now()
			return e.session, nil
		}
		e.session.Close()
		delete(p.entries, h.Name)
	}

	if p.MaxHosts > 0 && len(p.entries) >= p.MaxHosts {
		return nil, fmt.Errorf("%w: at capacity (%d hosts)", scouterr.ErrPoolFull, p.MaxHosts)
	}

	sess, err := dial(h.Addr(), h.User, h.IdentityFile, p.dialTimeout, p.HostKeyCallback)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", scouterr.ErrConnectFailed, h.Name, err)
	}

	p.entries[h.Name] = &entry{session: sess, lastUsed: time.Now()}
	p.ensureReaper()
	return sess, nil
}

// GetWithRetry is the one-retry helper of spec §4.3: try Get(h); on
// failure, Remove(h.Name) and retry Get exactly once, surfacing the
// second failure.
func (p *Pool) GetWithRetry(h hostinfo.Host) (*Session, error) {
	sess, err := p.Get(h)
	if err == nil {
		return sess, nil
	}
	p.Remove(h.Name)
	return p.Get(h)
}

// Remove closes and drops the cached entry for name. Idempotent.
func (p *Pool) Remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(name)
}

func (p *Pool) removeLocked(name string) {
	e, ok := p.entries[name]
	if !ok {
		return
	}
	e.session.Close()
	delete(p.entries, name)
}

// CloseAll closes and drops every entry and stops the reaper.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name := range p.entries {
		p.removeLocked(name)
	}
	p.stopReaperLocked()
}

// Size returns the number of live entries.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// ActiveHosts returns the names of every host with a live entry.
func (p *Pool) ActiveHosts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.entries))
	for name := range p.entries {
		out = append(out, name)
	}
	return out
}

// ensureReaper lazily spawns the idle reaper if it is not already
// running. Must be called with p.mu held.
func (p *Pool) ensureReaper() {
	if p.reaperRunning {
		return
	}
	p.reaperRunning = true
	p.stopReaper = make(chan struct{})
	go p.reapLoop(p.stopReaper)
}

// stopReaperLocked signals the reaper goroutine to exit. Safe to call
// when no reaper is running. Must be called with p.mu held.
func (p *Pool) stopReaperLocked() {
	if !p.reaperRunning {
		return
	}
	close(p.stopReaper)
	p.reaperRunning = false
}

// reapLoop wakes every idleTimeout/2 and closes every entry whose
// last-used time is older than idleTimeout, or whose session reports
// stale. It terminates itself once the pool is empty; a subsequent Get
// respawns it via ensureReaper.
func (p *Pool) reapLoop(stop chan struct{}) {
	interval := p.idleTimeout / 2
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if p.reap() {
				return
			}
		}
	}
}

// reap closes stale/expired entries and reports whether the pool is now
// empty (in which case the caller should terminate the reaper loop).
func (p *Pool) reap() (empty bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := time.Now().Add(-p.idleTimeout)
	for name, e := range p.entries {
		if e.lastUsed.Before(cutoff) || e.session.IsStale() {
			e.session.Close()
			delete(p.entries, name)
		}
	}

	if len(p.entries) == 0 {
		p.reaperRunning = false
		return true
	}
	return false
}
