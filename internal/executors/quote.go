// Package executors is the library of named remote operations: each
// function takes a live SSH session plus typed parameters, builds a
// single shell command string, and returns typed output without ever
// raising for a nonzero remote exit code (spec §4.4, component C5).
package executors

import "strings"

// shellQuote renders s as a single shell-safe token using POSIX
// single-quote escaping: close the quote, emit an escaped literal quote,
// reopen the quote. Unlike a string-repr quoter, this is correct for
// every byte a shell can see — single quotes, double quotes, `$`,
// backticks, newlines, NUL aside.
//
// This is the "real shell-quoter" spec §9 requires in place of the
// source's repr-style quoting: every user-controlled token below is
// passed through shellQuote except run_command's query argument, which
// is deliberately never quoted (spec §4.4, §9 — it is a shell command by
// design, not a literal to protect).
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
