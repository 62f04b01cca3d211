package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeHostsFile(t *testing.T, yamlBody string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hosts.yaml")
	if err := os.WriteFile(p, []byte(yamlBody), 0644); err != nil {
		t.Fatalf("writing hosts file: %v", err)
	}
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("SCOUT_HOSTS_FILE", writeHostsFile(t, "[]"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport != "http" {
		t.Fatalf("Transport = %q, want http", cfg.Transport)
	}
	if cfg.HTTPPort != 8000 {
		t.Fatalf("HTTPPort = %d, want 8000", cfg.HTTPPort)
	}
	if cfg.MaxFileSize != 1048576 {
		t.Fatalf("MaxFileSize = %d, want 1048576", cfg.MaxFileSize)
	}
	if cfg.CommandTimeout != 30 {
		t.Fatalf("CommandTimeout = %d, want 30", cfg.CommandTimeout)
	}
}

func TestLoadParsesHostsFile(t *testing.T) {
	path := writeHostsFile(t, `
- name: dookie
  hostname: 10.0.0.5
  port: 2222
  user: ops
  identity_file: /home/ops/.ssh/id_ed25519
- name: tootie
  hostname: 10.0.0.6
  user: ops
`)
	t.Setenv("SCOUT_HOSTS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Hosts) != 2 {
		t.Fatalf("len(Hosts) = %d, want 2", len(cfg.Hosts))
	}
	if cfg.Hosts[0].Name != "dookie" || cfg.Hosts[0].Port != 2222 {
		t.Fatalf("Hosts[0] = %+v", cfg.Hosts[0])
	}
	if cfg.Hosts[1].Port != 22 {
		t.Fatalf("Hosts[1].Port = %d, want the implicit default of 22", cfg.Hosts[1].Port)
	}
}

func TestLoadRejectsDuplicateHostNames(t *testing.T) {
	path := writeHostsFile(t, `
- name: dookie
  hostname: 10.0.0.5
  user: ops
- name: dookie
  hostname: 10.0.0.6
  user: ops
`)
	t.Setenv("SCOUT_HOSTS_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected a duplicate-name error")
	}
}

func TestLoadAllowlistTakesPrecedenceOverBlocklist(t *testing.T) {
	path := writeHostsFile(t, `
- name: dookie
  hostname: 10.0.0.5
  user: ops
- name: tootie
  hostname: 10.0.0.6
  user: ops
`)
	t.Setenv("SCOUT_HOSTS_FILE", path)
	t.Setenv("SCOUT_HOST_ALLOWLIST", "doo*")
	t.Setenv("SCOUT_HOST_BLOCKLIST", "doo*")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Hosts) != 1 || cfg.Hosts[0].Name != "dookie" {
		t.Fatalf("Hosts = %+v, want only dookie (allowlist wins)", cfg.Hosts)
	}
}

func TestLoadMissingHostsFileYieldsEmptyTable(t *testing.T) {
	t.Setenv("SCOUT_HOSTS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Hosts) != 0 {
		t.Fatalf("Hosts = %+v, want empty", cfg.Hosts)
	}
}
