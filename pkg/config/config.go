// Package config loads topovis settings from a TOML file.
//
// A file only needs the keys it changes; everything else keeps the value
// from [Default]:
//
//	title = "payments"
//
//	[source]
//	url = "http://localhost:8000"
//
//	[cache]
//	type = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[style]
//	match_key = "pair"
//
//	[viewport]
//	min_scale = 0.5
//
// Command-line flags override file values; the CLI applies them after
// [Load].
package config

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/topovis/pkg/cache"
	"github.com/matzehuels/topovis/pkg/cluster"
	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
	"github.com/matzehuels/topovis/pkg/layout"
	"github.com/matzehuels/topovis/pkg/pipeline"
	"github.com/matzehuels/topovis/pkg/source"
	"github.com/matzehuels/topovis/pkg/style"
	"github.com/matzehuels/topovis/pkg/viewport"
)

// =============================================================================
// Config
// =============================================================================

// Config is the full application configuration.
type Config struct {
	Title    string             `toml:"title" json:"title,omitempty"`
	Source   source.Config      `toml:"source" json:"source"`
	Cache    CacheConfig        `toml:"cache" json:"cache"`
	Server   ServerConfig       `toml:"server" json:"server"`
	Graph    graph.BuildOptions `toml:"graph" json:"graph"`
	Layout   layout.Options     `toml:"layout" json:"layout"`
	Style    style.Options      `toml:"style" json:"style"`
	Cluster  cluster.Options    `toml:"cluster" json:"cluster"`
	Viewport viewport.Config    `toml:"viewport" json:"viewport"`
}

// Default returns the built-in configuration: multigraph edges, uid
// matching, no cache, and a server on port 8000.
func Default() Config {
	c := base()
	c.SetDefaults()
	return c
}

// base holds the defaults that a zero value cannot express. Everything else
// is filled by SetDefaults after decoding, so dependent defaults such as the
// edge opacity follow the decoded match key.
func base() Config {
	return Config{
		Graph: graph.BuildOptions{Multigraph: true},
	}
}

// Load reads a TOML file. Unknown keys are rejected so typos do not pass
// silently.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is [Load] for an optional path: an empty path yields
// [Default].
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes TOML text, applies defaults and validates.
func Parse(text string) (Config, error) {
	cfg := base()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults fills zero values in every section.
func (c *Config) SetDefaults() {
	if c.Source != (source.Config{}) {
		c.Source.SetDefaults()
	}
	c.Cache.SetDefaults()
	c.Server.SetDefaults()
	c.Graph.SetDefaults()
	c.Layout.SetDefaults()
	c.Style.SetDefaults()
	c.Cluster.SetDefaults()
	c.Viewport.SetDefaults()
}

// Validate checks every section. The source section is only checked when
// it is set, since the source may come from the command line.
func (c Config) Validate() error {
	if c.Source != (source.Config{}) {
		if err := c.Source.Validate(); err != nil {
			return err
		}
	}
	for _, v := range []interface{ Validate() error }{
		c.Cache, c.Server, c.Layout, c.Style, c.Cluster, c.Viewport,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return errors.ValidateStruct(c.Graph, errors.ErrCodeInvalidConfig)
}

// Pipeline converts the stage sections into pipeline options.
func (c Config) Pipeline() pipeline.Options {
	return pipeline.Options{
		Build:    c.Graph,
		Layout:   c.Layout,
		Style:    c.Style,
		Cluster:  c.Cluster,
		Viewport: c.Viewport,
		Title:    c.Title,
	}
}

// Encode writes c as TOML.
func (c Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", err
	}
	return b.String(), nil
}

// =============================================================================
// Cache
// =============================================================================

// CacheType selects a cache backend.
type CacheType string

const (
	CacheNone  CacheType = "none"
	CacheFile  CacheType = "file"
	CacheRedis CacheType = "redis"
)

// CacheConfig configures the layout cache. Nothing is stored unless a file or
// redis backend is chosen.
type CacheConfig struct {
	Type   CacheType         `toml:"type" json:"type" validate:"omitempty,oneof=none file redis"`
	Dir    string            `toml:"dir" json:"dir,omitempty"`
	Prefix string            `toml:"prefix" json:"prefix,omitempty"`
	Redis  cache.RedisConfig `toml:"redis" json:"redis"`
}

// SetDefaults disables caching when no type is given.
func (c *CacheConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = CacheNone
	}
	if c.Type == CacheRedis && c.Redis.Addr == "" {
		c.Redis.Addr = source.DefaultRedisAddr
	}
}

// Validate checks the backend name.
func (c CacheConfig) Validate() error {
	return errors.ValidateStruct(c, errors.ErrCodeInvalidConfig)
}

// Open connects the configured backend. A file cache that cannot create its
// directory degrades to no cache; an unreachable Redis is an error.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Type {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Redis)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect cache redis %s", c.Redis.Addr)
		}
		return rc, nil
	}
	dir := c.Dir
	if dir == "" {
		d, err := cache.DefaultDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// Keyer returns the key scheme, namespaced by Prefix.
func (c CacheConfig) Keyer() cache.Keyer {
	return cache.NewPrefixedKeyer(cache.NewDefaultKeyer(), c.Prefix)
}

// =============================================================================
// Server
// =============================================================================

// Server defaults.
const (
	DefaultHost = "localhost"
	DefaultPort = 8000
)

// ServerConfig configures `topovis serve`.
type ServerConfig struct {
	Host string `toml:"host" json:"host"`
	Port int    `toml:"port" json:"port" validate:"gte=0,lte=65535"`

	// FindPort searches upward from Port when it is taken.
	FindPort bool `toml:"find_port" json:"find_port"`
}

// SetDefaults fills the host and port.
func (s *ServerConfig) SetDefaults() {
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if s.Port == 0 {
		s.Port = DefaultPort
	}
}

// Validate checks the port range.
func (s ServerConfig) Validate() error {
	return errors.ValidateStruct(s, errors.ErrCodeInvalidConfig)
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
