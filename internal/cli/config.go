package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mealyetf/pkg/cache"
)

// Cache backends selectable in the config file.
const (
	backendFile  = "file"
	backendNone  = "none"
	backendRedis = "redis"
	backendBolt  = "bolt"
	backendMongo = "mongo"
)

const defaultServerAddr = "127.0.0.1:8080"

// Config is the optional TOML configuration file.
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"` // file backend; defaults to the XDG cache dir
	TTL     duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
	Bolt    BoltConfig  `toml:"bolt"`
	Mongo   MongoConfig `toml:"mongo"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type BoltConfig struct {
	Path string `toml:"path"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration decodes Go duration strings such as "36h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Backend: backendFile,
			TTL:     duration{cache.TTLArtifact},
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Server: ServerConfig{Addr: defaultServerAddr},
	}
}

// loadConfig reads the config file at path over the defaults. A missing file
// is only an error when the path was given explicitly.
func loadConfig(path string, explicit bool) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case backendFile, backendNone, backendRedis, backendBolt:
	case backendMongo:
		if c.Cache.Mongo.URI == "" {
			return errors.New("cache.mongo.uri is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	return nil
}

// configPath returns the default config file location
// ($XDG_CONFIG_HOME/mealyetf/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// boltPath returns the configured Bolt file, defaulting into the cache dir.
func (c *Config) boltPath() (string, error) {
	if c.Cache.Bolt.Path != "" {
		return c.Cache.Bolt.Path, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "artifacts.db"), nil
}

// fileDir returns the configured file cache directory.
func (c *Config) fileDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cacheDir()
}
