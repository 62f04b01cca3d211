// Package config loads the gateway's environment-variable surface (spec
// §6) plus the host table that stands in for the out-of-scope SSH
// config-file collaborator.
package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"scout-gateway/internal/hostinfo"
)

// Config is every knob spec §6 names, plus the loaded host table.
type Config struct {
	Transport string // "http" | "stdio"
	HTTPHost  string
	HTTPPort  int

	LogLevel         string
	LogColors        bool
	LogPayloads      bool
	SlowThresholdMs  int64
	IncludeTraceback bool

	MaxFileSize    int
	CommandTimeout int // seconds
	IdleTimeout    time.Duration

	SSHConfigPath string
	HostAllowlist []string
	HostBlocklist []string

	HostsFile string
	Hosts     []hostinfo.Host
}

// Load reads process environment variables, optionally preceded by a
// .env file (process env always wins, matching the teacher's
// flag-overrides-env precedence idiom), then loads and filters the host
// table named by SCOUT_HOSTS_FILE.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Transport:        getEnv("SCOUT_TRANSPORT", "http"),
		HTTPHost:         getEnv("SCOUT_HTTP_HOST", "0.0.0.0"),
		HTTPPort:         getEnvInt("SCOUT_HTTP_PORT", 8000),
		LogLevel:         getEnv("SCOUT_LOG_LEVEL", "DEBUG"),
		LogColors:        getEnvBool("SCOUT_LOG_COLORS", true),
		LogPayloads:      getEnvBool("SCOUT_LOG_PAYLOADS", false),
		SlowThresholdMs:  int64(getEnvInt("SCOUT_SLOW_THRESHOLD_MS", 1000)),
		IncludeTraceback: getEnvBool("SCOUT_INCLUDE_TRACEBACK", false),
		MaxFileSize:      getEnvInt("SCOUT_MAX_FILE_SIZE", 1048576),
		CommandTimeout:   getEnvInt("SCOUT_COMMAND_TIMEOUT", 30),
		IdleTimeout:      time.Duration(getEnvInt("SCOUT_IDLE_TIMEOUT", 60)) * time.Second,
		SSHConfigPath:    getEnv("SCOUT_SSH_CONFIG_PATH", defaultSSHConfigPath()),
		HostAllowlist:    splitGlobList(getEnv("SCOUT_HOST_ALLOWLIST", "")),
		HostBlocklist:    splitGlobList(getEnv("SCOUT_HOST_BLOCKLIST", "")),
		HostsFile:        getEnv("SCOUT_HOSTS_FILE", "./hosts.yaml"),
	}

	hosts, err := loadHosts(cfg.HostsFile)
	if err != nil {
		return nil, err
	}
	hosts = filterHosts(hosts, cfg.HostAllowlist, cfg.HostBlocklist)

	// NewTable's duplicate-name rejection doubles as this package's
	// fatal-startup-error check (spec §3 "at most one Host per name").
	if _, err := hostinfo.NewTable(hosts); err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.HostsFile, err)
	}
	cfg.Hosts = hosts

	return cfg, nil
}

func defaultSSHConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.ssh/config"
}

// hostRecord is the YAML shape of one entry in SCOUT_HOSTS_FILE.
type hostRecord struct {
	Name         string `yaml:"name"`
	Hostname     string `yaml:"hostname"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	IdentityFile string `yaml:"identity_file"`
}

func loadHosts(path string) ([]hostinfo.Host, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading host file: %w", err)
	}

	var records []hostRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing host file: %w", err)
	}

	hosts := make([]hostinfo.Host, 0, len(records))
	for _, r := range records {
		port := r.Port
		if port == 0 {
			port = 22
		}
		hosts = append(hosts, hostinfo.Host{
			Name:         r.Name,
			Hostname:     r.Hostname,
			Port:         port,
			User:         r.User,
			IdentityFile: r.IdentityFile,
		})
	}
	return hosts, nil
}

// filterHosts applies spec §6's allow/block glob filtering against
// Host.name: a nonempty allowlist takes precedence over the blocklist.
func filterHosts(hosts []hostinfo.Host, allow, block []string) []hostinfo.Host {
	if len(allow) == 0 && len(block) == 0 {
		return hosts
	}
	out := make([]hostinfo.Host, 0, len(hosts))
	for _, h := range hosts {
		if len(allow) > 0 {
			if matchesAny(allow, h.Name) {
				out = append(out, h)
			}
			continue
		}
		if !matchesAny(block, h.Name) {
			out = append(out, h)
		}
	}
	return out
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

func splitGlobList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
