// Package config loads storyflow's optional TOML configuration.
//
// A configuration file is looked up in order: an explicit path (the
// --config flag), ./storyflow.toml, then
// $XDG_CONFIG_HOME/storyflow/storyflow.toml. Missing files fall back to
// [Default]; keys present in a file override the defaults one by one.
//
//	[extract]
//	abbreviation = "VC"
//	long_form = "ViewController"
//	workers = 4
//
//	[extract.kind_aliases]
//	show = "push"
//	presentModally = "presentation"
//
//	[render]
//	formats = ["svg"]
//	font_name = "courier"
//	view = true
//
//	[render.colors]
//	unwind = "gray"
//
//	[cache]
//	disabled = false
//	ttl = "168h"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/storyflow/pkg/errors"
	"github.com/matzehuels/storyflow/pkg/flow"
	"github.com/matzehuels/storyflow/pkg/pipeline"
)

// FileName is the name of the storyflow configuration file.
const FileName = "storyflow.toml"

// Config holds all storyflow configuration.
type Config struct {
	Extract ExtractConfig `toml:"extract"`
	Render  RenderConfig  `toml:"render"`
	Cache   CacheConfig   `toml:"cache"`
}

// ExtractConfig tunes graph building.
type ExtractConfig struct {
	Abbreviation string            `toml:"abbreviation"`
	LongForm     string            `toml:"long_form"`
	Workers      int               `toml:"workers"`
	MaxDepth     int               `toml:"max_depth"`
	MaxChildren  int               `toml:"max_children"`
	KindAliases  map[string]string `toml:"kind_aliases"`
}

// RenderConfig holds defaults for the render command.
type RenderConfig struct {
	Formats  []string          `toml:"formats"`
	Colors   map[string]string `toml:"colors"`
	FontName string            `toml:"font_name"`
	View     bool              `toml:"view"`
}

// CacheConfig controls the artifact cache.
type CacheConfig struct {
	Disabled bool          `toml:"disabled"`
	TTL      time.Duration `toml:"ttl"`

	// RedisURL selects a shared Redis cache instead of the local directory.
	RedisURL string `toml:"redis_url"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Extract: ExtractConfig{
			Abbreviation: flow.DefaultAbbreviation,
			LongForm:     flow.DefaultLongForm,
			Workers:      1,
			MaxDepth:     flow.DefaultMaxDepth,
			MaxChildren:  flow.DefaultMaxChildren,
		},
		Render: RenderConfig{
			Formats:  []string{pipeline.FormatSVG},
			FontName: "courier",
			View:     true,
		},
		Cache: CacheConfig{TTL: 7 * 24 * time.Hour},
	}
}

// Load resolves and reads the configuration file. explicit, when set, must
// exist. The returned path is the file that was read, or "" when the
// defaults are used.
func Load(explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := LoadFromPath(explicit)
		if err != nil {
			return nil, "", err
		}
		return cfg, explicit, nil
	}

	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

// SearchPaths returns the implicit configuration locations in lookup order.
func SearchPaths() []string {
	paths := []string{FileName}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		}
	}
	if dir != "" {
		paths = append(paths, filepath.Join(dir, "storyflow", FileName))
	}
	return paths
}

// LoadFromPath reads the configuration file at path over the defaults and
// validates the result. Unknown keys are rejected so typos do not pass
// silently.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config").WithSubject(path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config").WithSubject(path)
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config").WithSubject(path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", ")).WithSubject(keys[0])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	x := c.Extract
	if x.Abbreviation == "" || x.LongForm == "" {
		return invalid("extract.abbreviation", "abbreviation and long_form must both be non-empty")
	}
	if x.Workers < 0 {
		return invalid("extract.workers", "workers must be non-negative, got %d", x.Workers)
	}
	if x.MaxDepth <= 0 {
		return invalid("extract.max_depth", "max_depth must be positive, got %d", x.MaxDepth)
	}
	if x.MaxChildren <= 0 {
		return invalid("extract.max_children", "max_children must be positive, got %d", x.MaxChildren)
	}
	for _, alias := range sortedKeys(x.KindAliases) {
		if _, ok := flow.ParseTransitionKind(alias); ok {
			return invalid("extract.kind_aliases."+alias, "%q is already a transition kind", alias)
		}
		if _, ok := flow.ParseTransitionKind(x.KindAliases[alias]); !ok {
			return invalid("extract.kind_aliases."+alias, "alias %q targets unknown kind %q", alias, x.KindAliases[alias])
		}
	}

	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return invalid("render.formats", "%s", errors.UserMessage(err))
	}
	for _, kind := range sortedKeys(c.Render.Colors) {
		if _, ok := flow.ParseTransitionKind(kind); !ok {
			return invalid("render.colors."+kind, "unknown transition kind %q", kind)
		}
	}

	if c.Cache.TTL < 0 {
		return invalid("cache.ttl", "ttl must be non-negative, got %s", c.Cache.TTL)
	}
	if u := c.Cache.RedisURL; u != "" {
		if _, err := redis.ParseURL(u); err != nil {
			return invalid("cache.redis_url", "%v", err)
		}
	}
	return nil
}

// FlowOptions converts the extract section to build options.
func (c *Config) FlowOptions() flow.Options {
	opts := flow.Options{
		Abbreviation: c.Extract.Abbreviation,
		LongForm:     c.Extract.LongForm,
		Workers:      c.Extract.Workers,
		MaxDepth:     c.Extract.MaxDepth,
		MaxChildren:  c.Extract.MaxChildren,
	}
	if len(c.Extract.KindAliases) > 0 {
		opts.KindAliases = make(map[string]flow.TransitionKind, len(c.Extract.KindAliases))
		for alias, target := range c.Extract.KindAliases {
			if k, ok := flow.ParseTransitionKind(target); ok {
				opts.KindAliases[alias] = k
			}
		}
	}
	return opts
}

// EdgeColors converts the render colour table to per-kind overrides.
func (c *Config) EdgeColors() map[flow.TransitionKind]string {
	if len(c.Render.Colors) == 0 {
		return nil
	}
	out := make(map[flow.TransitionKind]string, len(c.Render.Colors))
	for name, color := range c.Render.Colors {
		if k, ok := flow.ParseTransitionKind(name); ok {
			out[k] = color
		}
	}
	return out
}

func invalid(key, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...).WithSubject(key)
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
