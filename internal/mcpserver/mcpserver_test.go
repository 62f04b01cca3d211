package mcpserver

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"scout-gateway/internal/config"
	"scout-gateway/internal/dispatch"
	"scout-gateway/internal/hostinfo"
	"scout-gateway/internal/middleware"
	"scout-gateway/internal/sshpool"
)

func TestBuildRouterDockerLogsBeforeDockerOrCatchAll(t *testing.T) {
	rt := BuildRouter([]string{"dookie"})
	m, ok := rt.Match("dookie", "docker/plex/logs")
	if !ok || m.HandlerID != "docker_logs" {
		t.Fatalf("got %+v, ok=%v, want docker_logs", m, ok)
	}
}

// Same canonical-order quirk as internal/router's own test: zfs/{pool} is
// registered before zfs/snapshots, so it shadows the dedicated handler.
func TestBuildRouterZFSPoolShadowsSnapshots(t *testing.T) {
	rt := BuildRouter([]string{"dookie"})
	m, ok := rt.Match("dookie", "zfs/snapshots")
	if !ok || m.HandlerID != "zfs_dataset_root" {
		t.Fatalf("got %+v, ok=%v, want zfs_dataset_root per the canonical registration order", m, ok)
	}
}

func TestBuildRouterGlobalSchemes(t *testing.T) {
	rt := BuildRouter([]string{"dookie"})
	if _, ok := rt.Match("scout", "dookie/etc/hosts"); !ok {
		t.Fatal("expected scout://dookie/etc/hosts to match")
	}
	if _, ok := rt.Match("hosts", "list"); !ok {
		t.Fatal("expected hosts://list to match")
	}
}

func TestNewBuildsAnMCPServerWithoutPanicking(t *testing.T) {
	cfg := &config.Config{Hosts: []hostinfo.Host{{Name: "dookie", Hostname: "127.0.0.1", Port: 22, User: "ops"}}}

	table, err := hostinfo.NewTable(cfg.Hosts)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	pool := sshpool.New()
	t.Cleanup(pool.CloseAll)
	rt := BuildRouter(table.Names())
	chain := middleware.New(zerolog.Nop(), middleware.NewStats())
	d := dispatch.New(table, pool, rt, chain, dispatch.Config{
		MaxFileSize:    1024,
		CommandTimeout: 5,
		ProbeTimeout:   time.Second,
	})

	s := New(cfg, d)
	if s == nil {
		t.Fatal("New returned nil")
	}
}
