package logging

import (
	"testing"

	"github.com/rs/zerolog"

	"scout-gateway/internal/config"
)

func TestNewDefaultsToDebugOnUnparseableLevel(t *testing.T) {
	cfg := &config.Config{LogLevel: "not-a-level"}
	New(cfg)
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("global level = %v, want DebugLevel", zerolog.GlobalLevel())
	}
}

func TestNewHonorsConfiguredLevel(t *testing.T) {
	cfg := &config.Config{LogLevel: "warn"}
	New(cfg)
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Fatalf("global level = %v, want WarnLevel", zerolog.GlobalLevel())
	}
}
