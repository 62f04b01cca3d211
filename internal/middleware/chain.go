// Package middleware implements the two-layer wrapper chain of spec
// §4.7 (component C7): Logging/Timing on the outside, ErrorHandling on
// the inside, so the timing brackets always include the error path.
// Reversing that order is a contract violation, not a style choice.
package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scout-gateway/internal/scouterr"
)

// Call describes one dispatch the chain wraps (spec §4.7 "context carries
// the method name, the inbound message... and opaque transport metadata").
type Call struct {
	// Kind is "tool" or "resource".
	Kind string
	// Label is the operation key used for both the log prefix and the
	// stats map — "tool:scout" or "resource:scout://host/path".
	Label string
	// Detail renders the call's arguments for the start log record
	// (">>> TOOL: name(args)" / ">>> RESOURCE: uri").
	Detail string
}

// Next is a continuation: the next layer in, or the actual operation.
type Next func() (string, error)

// Chain is the built two-layer wrapper, constructed once and reused for
// every call.
type Chain struct {
	logger           zerolog.Logger
	stats            *Stats
	slowThresholdMs  int64
	includeTraceback bool
	logPayloads      bool
	onError          func(call Call, err error)
}

// Option configures a Chain at construction time.
type Option func(*Chain)

// WithSlowThresholdMs sets the elapsed-ms threshold for the SLOW warning
// (spec §6 SCOUT_SLOW_THRESHOLD_MS, default 1000).
func WithSlowThresholdMs(ms int64) Option {
	return func(c *Chain) { c.slowThresholdMs = ms }
}

// WithIncludeTraceback controls whether ERROR records attach a captured
// stack (spec §6 SCOUT_INCLUDE_TRACEBACK).
func WithIncludeTraceback(include bool) Option {
	return func(c *Chain) { c.includeTraceback = include }
}

// WithLogPayloads controls how much of the result the DEBUG end record
// carries (spec §6 SCOUT_LOG_PAYLOADS): when false, a result longer than
// 80 bytes is cut to its first 80 bytes plus "..."; when true, the whole
// result is logged. The start record always carries the call's Detail.
func WithLogPayloads(include bool) Option {
	return func(c *Chain) { c.logPayloads = include }
}

// WithErrorCallback registers an optional hook invoked by the
// ErrorHandling layer on every error (spec §4.7 "invokes an optional
// error-callback").
func WithErrorCallback(cb func(call Call, err error)) Option {
	return func(c *Chain) { c.onError = cb }
}

// New builds a Chain backed by logger and stats.
func New(logger zerolog.Logger, stats *Stats, opts ...Option) *Chain {
	c := &Chain{
		logger:          logger,
		stats:           stats,
		slowThresholdMs: 1000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats exposes the shared counters (spec §4.7 get_stats/reset_stats).
func (c *Chain) Stats() *Stats { return c.stats }

// Run invokes call through the chain: Logging/Timing outside,
// ErrorHandling inside, wrapping fn.
func (c *Chain) Run(call Call, fn Next) (string, error) {
	return c.logging(call, func() (string, error) {
		return c.errorHandling(call, fn)
	})
}

// logging is the outer layer (spec §4.7 item 1).
func (c *Chain) logging(call Call, next Next) (string, error) {
	requestID := uuid.New().String()
	start := time.Now()

	verb := "RESOURCE"
	if call.Kind == "tool" {
		verb = "TOOL"
	}
	c.logger.Debug().
		Str("event", "start").
		Str("request_id", requestID).
		Msg(fmt.Sprintf(">>> %s: %s", verb, call.Detail))

	result, err := next()
	elapsedMs := time.Since(start).Milliseconds()
	c.stats.recordTiming(call.Label, elapsedMs)

	if err != nil {
		kind := scouterr.Kind(err)
		c.logger.Error().
			Str("request_id", requestID).
			Str("kind", kind).
			Int64("elapsed_ms", elapsedMs).
			Msg(fmt.Sprintf("!!! %s -> %s: %s [%dms]", call.Label, kind, err.Error(), elapsedMs))
		return result, err
	}

	summary := result
	if !c.logPayloads && len(summary) > 80 {
		summary = summary[:80] + "..."
	}
	endEvt := c.logger.Debug().Str("request_id", requestID).Int64("elapsed_ms", elapsedMs)
	endEvt.Msg(fmt.Sprintf("<<< %s -> %s [%dms]", call.Label, summary, elapsedMs))

	if elapsedMs >= c.slowThresholdMs {
		c.logger.Warn().
			Str("request_id", requestID).
			Int64("elapsed_ms", elapsedMs).
			Msg(fmt.Sprintf("SLOW %s took %dms", call.Label, elapsedMs))
	}

	return result, nil
}

// errorHandling is the inner layer (spec §4.7 item 2): increments the
// error counter, optionally logs a traceback, invokes the optional
// callback, and always returns the error unchanged — it never swallows.
func (c *Chain) errorHandling(call Call, next Next) (string, error) {
	result, err := next()
	if err == nil {
		return result, nil
	}

	kind := scouterr.Kind(err)
	c.stats.recordError(kind)

	if c.includeTraceback {
		c.logger.Error().
			Str("kind", kind).
			Str("traceback", string(debug.Stack())).
			Msg("error traceback")
	}

	if c.onError != nil {
		c.onError(call, err)
	}

	return result, err
}
