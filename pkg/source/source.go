// Package source fetches graph descriptions.
//
// A [Source] returns a [graph.Document] from one backend:
//   - [HTTP]: GET <base>/graph_data
//   - [File]: a local JSON or YAML file
//   - [Redis]: the value of one key
//   - [Mongo]: one document of a collection, selected by name
//   - [Static]: an in-memory document
//
// Every transport or store failure is a FETCH_ERROR. Nothing is retried: a
// failed fetch aborts the render. A payload that arrives but cannot be
// decoded is INVALID_INPUT.
//
// # Usage
//
//	src, err := source.Parse("http://localhost:8000")
//	doc, err := src.Fetch(ctx)
package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
)

// Source produces graph descriptions.
type Source interface {
	// Fetch retrieves and decodes the description.
	Fetch(ctx context.Context) (graph.Document, error)

	// Raw retrieves the description bytes as stored.
	Raw(ctx context.Context) ([]byte, error)

	// String identifies the source in logs.
	String() string
}

// Type names a backend.
type Type string

const (
	TypeHTTP  Type = "http"
	TypeFile  Type = "file"
	TypeRedis Type = "redis"
	TypeMongo Type = "mongo"
)

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// Config selects and configures a backend. Exactly the section matching
// Type is used.
type Config struct {
	Type    Type          `toml:"type" json:"type" validate:"omitempty,oneof=http file redis mongo"`
	URL     string        `toml:"url" json:"url,omitempty"`
	Path    string        `toml:"path" json:"path,omitempty"`
	Timeout time.Duration `toml:"timeout" json:"timeout,omitempty" validate:"gte=0"`
	Redis   RedisConfig   `toml:"redis" json:"redis"`
	Mongo   MongoConfig   `toml:"mongo" json:"mongo"`
}

// SetDefaults infers Type from the filled section and sets the timeout.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Type != "" {
		return
	}
	switch {
	case c.URL != "":
		c.Type = TypeHTTP
	case c.Path != "":
		c.Type = TypeFile
	case c.Redis.Key != "":
		c.Type = TypeRedis
	case c.Mongo.Name != "":
		c.Type = TypeMongo
	}
}

// Validate checks that the selected backend is fully configured.
func (c Config) Validate() error {
	if err := errors.ValidateStruct(c, errors.ErrCodeInvalidConfig); err != nil {
		return err
	}
	switch c.Type {
	case TypeHTTP:
		if err := errors.ValidateURL(c.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "source url")
		}
	case TypeFile:
		if c.Path == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source path is required")
		}
	case TypeRedis:
		if c.Redis.Key == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source redis.key is required")
		}
	case TypeMongo:
		if c.Mongo.URI == "" || c.Mongo.Name == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source mongo.uri and mongo.name are required")
		}
	case "":
		return errors.New(errors.ErrCodeInvalidConfig, "no source configured")
	}
	return nil
}

// New builds the source described by cfg. Connections are opened lazily on
// the first fetch.
func New(cfg Config) (Source, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case TypeHTTP:
		return NewHTTP(cfg.URL, cfg.Timeout), nil
	case TypeFile:
		return NewFile(cfg.Path), nil
	case TypeRedis:
		return NewRedis(cfg.Redis), nil
	case TypeMongo:
		return NewMongo(cfg.Mongo), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown source type %q", cfg.Type)
}

// Parse builds a source from a command-line argument:
//
//	http://host:8000                      HTTP endpoint base
//	graph.json, file:///tmp/graph.yaml    file
//	redis://host:6379/0/topovis:graph     Redis db 0, key topovis:graph
//	mongodb://host/?db=d&collection=c&name=n
func Parse(arg string) (Source, error) {
	cfg, err := ParseConfig(arg)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// ParseConfig is [Parse] without constructing the source.
func ParseConfig(arg string) (Config, error) {
	switch {
	case arg == "":
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "empty source")
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		return Config{Type: TypeHTTP, URL: arg}, nil
	case strings.HasPrefix(arg, "file://"):
		return Config{Type: TypeFile, Path: strings.TrimPrefix(arg, "file://")}, nil
	case strings.HasPrefix(arg, "redis://"):
		return parseRedis(arg)
	case strings.HasPrefix(arg, "mongodb://"), strings.HasPrefix(arg, "mongodb+srv://"):
		return parseMongo(arg)
	case strings.Contains(arg, "://"):
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unsupported source scheme in %q", arg)
	default:
		return Config{Type: TypeFile, Path: arg}, nil
	}
}

func parseRedis(arg string) (Config, error) {
	u, err := url.Parse(arg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", arg)
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "redis source must be redis://host:port/<db>/<key>")
	}
	db, err := strconv.Atoi(parts[0])
	if err != nil {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "redis db %q is not a number", parts[0])
	}
	cfg := Config{Type: TypeRedis, Redis: RedisConfig{Addr: u.Host, DB: db, Key: parts[1]}}
	if pw, ok := u.User.Password(); ok {
		cfg.Redis.Password = pw
	}
	return cfg, nil
}

func parseMongo(arg string) (Config, error) {
	u, err := url.Parse(arg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse mongo uri")
	}
	q := u.Query()
	m := MongoConfig{
		Database:   q.Get("db"),
		Collection: q.Get("collection"),
		Name:       q.Get("name"),
	}
	q.Del("db")
	q.Del("collection")
	q.Del("name")
	u.RawQuery = q.Encode()
	m.URI = u.String()
	if m.Name == "" {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "mongo source needs a name query parameter")
	}
	return Config{Type: TypeMongo, Mongo: m}, nil
}

func decode(src Source, data []byte, format graph.Format) (graph.Document, error) {
	doc, err := graph.Unmarshal(data, format)
	if err != nil {
		return graph.Document{}, fmt.Errorf("%s: %w", src, err)
	}
	return doc, nil
}
