package hostinfo

import (
	"fmt"
	"strings"

	"scout-gateway/internal/scouterr"
)

// Target is the parsed form of a scout tool's "target" argument: either
// the literal "hosts" request or a "host:path" pair. Path is kept
// verbatim — no canonicalization, no leading-slash requirement (spec
// §4.1; the resource adapter, not this parser, normalizes paths read
// through the catch-all route, see normalizePath in internal/dispatch).
type Target struct {
	Hosts bool
	Host  string
	Path  string
}

// ParseTarget parses a scout tool target string (spec §4.1).
func ParseTarget(s string) (Target, error) {
	trimmed := strings.TrimSpace(s)
	if strings.IndexByte(trimmed, 0) != -1 {
		return Target{}, fmt.Errorf("%w: embedded NUL byte", scouterr.ErrInvalidTarget)
	}

	if strings.ToLower(trimmed) == "hosts" {
		return Target{Hosts: true}, nil
	}

	idx := strings.IndexByte(trimmed, ':')
	if idx < 0 {
		return Target{}, fmt.Errorf("%w: %q has no ':' separator", scouterr.ErrInvalidTarget, s)
	}

	host := trimmed[:idx]
	path := trimmed[idx+1:]
	if host == "" || path == "" {
		return Target{}, fmt.Errorf("%w: %q must be \"host:path\"", scouterr.ErrInvalidTarget, s)
	}

	return Target{Host: host, Path: path}, nil
}

// Format renders a Target back to its canonical "host:path"/"hosts" form,
// the inverse of ParseTarget (spec §8 round-trip property).
func (t Target) Format() string {
	if t.Hosts {
		return "hosts"
	}
	return t.Host + ":" + t.Path
}

// ResourceURI is the parsed form of a "scheme://host/rest"-shaped URI
// (spec §4.1). Segments holds rest split on '/', with empty rest
// yielding a nil slice (not one empty-string segment).
type ResourceURI struct {
	Scheme   string
	Rest     string // slash-joined, verbatim
	Segments []string
}

// ParseResourceURI parses a resource URI of the form "scheme://host/rest".
func ParseResourceURI(s string) (ResourceURI, error) {
	if strings.IndexByte(s, 0) != -1 {
		return ResourceURI{}, fmt.Errorf("%w: embedded NUL byte", scouterr.ErrInvalidTarget)
	}

	const sep = "://"
	idx := strings.Index(s, sep)
	if idx < 0 {
		return ResourceURI{}, fmt.Errorf("%w: %q is missing \"://\"", scouterr.ErrInvalidTarget, s)
	}

	scheme := s[:idx]
	rest := s[idx+len(sep):]
	if scheme == "" {
		return ResourceURI{}, fmt.Errorf("%w: %q has an empty scheme", scouterr.ErrInvalidTarget, s)
	}

	var segments []string
	if rest != "" {
		segments = strings.Split(rest, "/")
	}

	return ResourceURI{Scheme: scheme, Rest: rest, Segments: segments}, nil
}

// Format renders a ResourceURI back to its canonical string form.
func (u ResourceURI) Format() string {
	return u.Scheme + "://" + u.Rest
}
