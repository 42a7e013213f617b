package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/topovis/pkg/cache"
	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/source"
	"github.com/matzehuels/topovis/pkg/style"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.Graph.Multigraph {
		t.Error("Multigraph = false, want true")
	}
	if cfg.Style.MatchKey != style.MatchUID {
		t.Errorf("MatchKey = %q, want uid", cfg.Style.MatchKey)
	}
	if cfg.Style.EdgeOpacity != 0.5 {
		t.Errorf("EdgeOpacity = %v, want 0.5", cfg.Style.EdgeOpacity)
	}
	if cfg.Cache.Type != CacheNone {
		t.Errorf("Cache.Type = %q, want none", cfg.Cache.Type)
	}
	if c, err := cfg.Cache.Open(context.Background()); err != nil {
		t.Errorf("Cache.Open() error = %v", err)
	} else if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("Cache.Open() = %T, want NullCache", c)
	}
	if got := cfg.Server.Addr(); got != "localhost:8000" {
		t.Errorf("Addr() = %q", got)
	}
	if cfg.Cluster.Margin != 10 {
		t.Errorf("Cluster.Margin = %v, want 10", cfg.Cluster.Margin)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
title = "payments"

[source]
url = "http://localhost:9000"
timeout = "3s"

[cache]
type = "file"
prefix = "team-a"

[graph]
multigraph = false

[style]
match_key = "pair"
label_background = true

[viewport]
width = 800
min_scale = 0.01
max_scale = 5
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Title != "payments" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Source.Type != source.TypeHTTP || cfg.Source.Timeout != 3*time.Second {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Cache.Type != CacheFile || cfg.Cache.Prefix != "team-a" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Graph.Multigraph {
		t.Error("Multigraph = true, want false")
	}
	if cfg.Style.EdgeOpacity != 1 {
		t.Errorf("EdgeOpacity = %v, want 1 for pair matching", cfg.Style.EdgeOpacity)
	}
	if !cfg.Style.LabelBackground {
		t.Error("LabelBackground = false")
	}
	if cfg.Viewport.Width != 800 || cfg.Viewport.Height != 800 {
		t.Errorf("Viewport size = %vx%v", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.Viewport.MinScale != 0.1 || cfg.Viewport.MaxScale != 3 {
		t.Errorf("Viewport extent = [%v, %v], want [0.1, 3]", cfg.Viewport.MinScale, cfg.Viewport.MaxScale)
	}
	if opts := cfg.Pipeline(); opts.Build.Multigraph || opts.Title != "payments" {
		t.Errorf("Pipeline() = %+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"syntax", `title = `, "decode"},
		{"unknown key", "[style]\ncolour = \"red\"", "style.colour"},
		{"bad match key", "[style]\nmatch_key = \"name\"", "match_key"},
		{"bad opacity", "[style]\nedge_opacity = 2", "edge_opacity"},
		{"bad cache", "[cache]\ntype = \"memcached\"", "type"},
		{"document ttl", "[cache]\ndocument_ttl = \"5m\"", "document_ttl"},
		{"bad port", "[server]\nport = 70000", "port"},
		{"bad source", "[source]\nurl = \"not a url\"", "url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %q, want INVALID_CONFIG", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topovis.toml")
	if err := os.WriteFile(path, []byte("[server]\nport = 9100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 || cfg.Server.Host != DefaultHost {
		t.Errorf("Server = %+v", cfg.Server)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}

	cfg, err = LoadOrDefault("")
	if err != nil || !cfg.Graph.Multigraph {
		t.Errorf("LoadOrDefault(\"\") = %+v, %v", cfg.Graph, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Title = "demo"
	text, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(Encode()) error = %v\n%s", err, text)
	}
	if got.Title != "demo" || got.Style.EdgeOpacity != cfg.Style.EdgeOpacity {
		t.Errorf("round trip changed config:\n%s", text)
	}
}

func TestCacheOpen(t *testing.T) {
	ctx := context.Background()

	c, err := CacheConfig{Type: CacheNone}.Open(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("none -> %T", c)
	}

	dir := t.TempDir()
	c, err = CacheConfig{Type: CacheFile, Dir: dir}.Open(ctx)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok || fc.Dir() != dir {
		t.Errorf("file -> %T", c)
	}

	k := CacheConfig{Prefix: "team:"}.Keyer()
	if got := k.LayoutKey([]byte("digraph{}")); !strings.HasPrefix(got, "team:layout:") {
		t.Errorf("LayoutKey() = %q, want team:layout: prefix", got)
	}
}
