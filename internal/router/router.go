// Package router implements the ordered, precedence-based URI matcher of
// spec §4.5 (component C6): patterns are tried in registration order and
// the first match wins, so registration discipline — specific patterns
// before a catch-all — is a correctness contract, not an optimization.
//
// Per the source's "closure-per-host handler factories" re-architecture
// note (spec §9), the router is data-driven: it stores (pattern,
// handlerID, boundHost) tuples rather than a closure per host. A single
// dispatch function elsewhere uses boundHost to pick the target host and
// handlerID to pick the executor.
package router

import "strings"

// segKind classifies one path-template segment.
type segKind int

const (
	segLiteral segKind = iota
	segParam           // {name} — matches exactly one path segment
	segWildcard        // {name*} — matches all remaining segments, possibly none
)

type templateSegment struct {
	kind    segKind
	literal string // for segLiteral
	name    string // for segParam/segWildcard
}

// Pattern is one registered route.
type Pattern struct {
	Scheme    string
	Template  string
	HandlerID string
	BoundHost string

	segments []templateSegment
}

// Match is the result of a successful Router.Match call.
type Match struct {
	HandlerID string
	BoundHost string
	Params    map[string]string
	// Wildcard holds the segments captured by a trailing {name*}, slash
	// joined, empty if the pattern has no wildcard or it matched nothing.
	Wildcard string
}

// Router holds patterns in registration order.
type Router struct {
	patterns []Pattern
}

// New returns an empty Router.
func New() *Router {
	return &Router{}
}

// Register adds a pattern. Patterns are matched in the order they were
// registered — registering a catch-all before a specific pattern shadows
// the specific one, per spec §4.5; callers are responsible for ordering
// (mcpserver.BuildRouter wires the canonical per-host order).
func (rt *Router) Register(scheme, template, handlerID, boundHost string) {
	rt.patterns = append(rt.patterns, Pattern{
		Scheme:    scheme,
		Template:  template,
		HandlerID: handlerID,
		BoundHost: boundHost,
		segments:  compile(template),
	})
}

func compile(template string) []templateSegment {
	if template == "" {
		return nil
	}
	parts := strings.Split(template, "/")
	segs := make([]templateSegment, 0, len(parts))
	for _, part := range parts {
		switch {
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "*}"):
			segs = append(segs, templateSegment{kind: segWildcard, name: part[1 : len(part)-2]})
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			segs = append(segs, templateSegment{kind: segParam, name: part[1 : len(part)-1]})
		default:
			segs = append(segs, templateSegment{kind: segLiteral, literal: part})
		}
	}
	return segs
}

// Match compares (scheme, path) against every registered pattern in
// order and returns the first match.
func (rt *Router) Match(scheme, path string) (Match, bool) {
	var pathSegs []string
	if path != "" {
		pathSegs = strings.Split(path, "/")
	}

	for _, p := range rt.patterns {
		if p.Scheme != scheme {
			continue
		}
		if params, wildcard, ok := matchSegments(p.segments, pathSegs); ok {
			return Match{HandlerID: p.HandlerID, BoundHost: p.BoundHost, Params: params, Wildcard: wildcard}, true
		}
	}
	return Match{}, false
}

func matchSegments(tmpl []templateSegment, path []string) (params map[string]string, wildcard string, ok bool) {
	params = map[string]string{}

	for i, seg := range tmpl {
		if seg.kind == segWildcard {
			wildcard = strings.Join(path[min(i, len(path)):], "/")
			return params, wildcard, true
		}
		if i >= len(path) {
			return nil, "", false
		}
		switch seg.kind {
		case segLiteral:
			if path[i] != seg.literal {
				return nil, "", false
			}
		case segParam:
			params[seg.name] = path[i]
		}
	}

	if len(path) != len(tmpl) {
		return nil, "", false
	}
	return params, "", true
}
