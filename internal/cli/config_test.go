package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mealyetf/pkg/cache"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.toml")} {
		cfg, err := loadConfig(path, false)
		if err != nil {
			t.Fatalf("loadConfig(%q): %v", path, err)
		}
		if cfg.Cache.Backend != backendFile {
			t.Errorf("backend = %q, want %q", cfg.Cache.Backend, backendFile)
		}
		if cfg.Cache.TTL.Duration != cache.TTLArtifact {
			t.Errorf("ttl = %v, want %v", cfg.Cache.TTL.Duration, cache.TTLArtifact)
		}
		if cfg.Server.Addr != defaultServerAddr {
			t.Errorf("server addr = %q, want %q", cfg.Server.Addr, defaultServerAddr)
		}
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"), true); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "redis"
ttl = "36h"

[cache.redis]
addr = "cache.internal:6380"
db = 2
prefix = "etf:"

[server]
addr = ":9000"
`)

	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Cache.Backend != backendRedis {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration != 36*time.Hour {
		t.Errorf("ttl = %v, want 36h", cfg.Cache.TTL.Duration)
	}
	if r := cfg.Cache.Redis; r.Addr != "cache.internal:6380" || r.DB != 2 || r.Prefix != "etf:" {
		t.Errorf("redis = %+v", r)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "[cache]\nbackend = \"file\"\ncolour = \"blue\"\n", "cache.colour"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n", "memcached"},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"\n", "uri"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n", "soon"},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n", "negative"},
		{"malformed", "[cache\n", "load config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content), true)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	want := filepath.Join("/tmp/custom-config", appName, "config.toml")
	if path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestConfigPathDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".config", appName, "config.toml")
	if path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}

func TestBoltPathDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	path, err := defaultConfig().boltPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName, "artifacts.db"); path != want {
		t.Errorf("boltPath() = %q, want %q", path, want)
	}
}
