// Package logging builds the gateway's single zerolog.Logger (spec §1.2):
// a console writer to stderr, colored and leveled per config, never
// touching stdout so STDIO transport framing stays clean (spec §6).
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"scout-gateway/internal/config"
)

// New builds the logger from cfg.LogLevel/LogColors (spec §1.2, grounded
// on the teacher pack's ConsoleWriter-to-stderr idiom).
func New(cfg *config.Config) zerolog.Logger {
	colors := cfg.LogColors && term.IsTerminal(int(os.Stderr.Fd()))

	out := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !colors, TimeFormat: "15:04:05"}
	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))
	return zerolog.New(out).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.DebugLevel
	}
	return lvl
}
