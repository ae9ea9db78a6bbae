// Package config loads markscan settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dhamidi/markscan/cache"
	"github.com/dhamidi/markscan/markup"
	"github.com/prometheus/client_golang/prometheus"
)

// FileName is the config file looked up by Find.
const FileName = ".markscan.toml"

// DefaultMaxCost bounds the link cache to roughly a megabyte of UTF-16
// input.
const DefaultMaxCost = 1 << 19

// Config holds the complete markscan configuration.
type Config struct {
	Format     string        `toml:"format"`
	Extensions []string      `toml:"extensions"`
	Kinds      []markup.Kind `toml:"kinds"`
	Cache      CacheConfig   `toml:"cache"`
	Log        LogConfig     `toml:"log"`
}

// CacheConfig controls the link cache.
type CacheConfig struct {
	Enabled bool `toml:"enabled"`
	MaxCost int  `toml:"max_cost"`
}

// LogConfig controls commonlog output.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Format:     "text",
		Extensions: []string{".md", ".markdown", ".txt"},
		Kinds:      append([]markup.Kind(nil), markup.AllKinds...),
		Cache: CacheConfig{
			Enabled: true,
			MaxCost: DefaultMaxCost,
		},
	}
}

// Load reads the configuration at path on top of Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Find looks for FileName in dir and its parents and returns the first
// one found.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadOrDefault loads the file Find locates from dir, or returns Default.
func LoadOrDefault(dir string) (*Config, error) {
	path, ok := Find(dir)
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = "text"
	}
	if c.Cache.MaxCost == 0 {
		c.Cache.MaxCost = DefaultMaxCost
	}
	for i, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			c.Extensions[i] = "." + ext
		}
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	if c.Cache.MaxCost < 0 {
		return fmt.Errorf("cache.max_cost must not be negative, got %d", c.Cache.MaxCost)
	}
	if len(c.Kinds) == 0 {
		return errors.New("kinds must name at least one link kind")
	}
	return nil
}

// Matches reports whether path has one of the configured extensions.
func (c *Config) Matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range c.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// NewDetector builds a link detector from the configuration. When reg is
// not nil the cache exports its metrics there.
func (c *Config) NewDetector(reg prometheus.Registerer) (*markup.Detector, error) {
	opts := []markup.Option{markup.WithKinds(c.Kinds...)}
	if c.Cache.Enabled {
		var cacheOpts []cache.Option
		if reg != nil {
			cacheOpts = append(cacheOpts, cache.WithMetrics(reg, "links"))
		}
		lc, err := cache.New[[]markup.Link](c.Cache.MaxCost, cacheOpts...)
		if err != nil {
			return nil, fmt.Errorf("create link cache: %w", err)
		}
		opts = append(opts, markup.WithCache(lc))
	}
	return markup.NewDetector(opts...), nil
}
