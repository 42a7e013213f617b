package source

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	tverrors "github.com/matzehuels/topovis/pkg/errors"
	"github.com/matzehuels/topovis/pkg/graph"
)

// RedisConfig locates a description stored as a Redis string value.
type RedisConfig struct {
	Addr     string `toml:"addr" json:"addr,omitempty"`
	Password string `toml:"password" json:"-"`
	DB       int    `toml:"db" json:"db,omitempty" validate:"gte=0"`
	Key      string `toml:"key" json:"key,omitempty"`
	// Format of the stored value; json when empty.
	Format graph.Format `toml:"format" json:"format,omitempty" validate:"omitempty,oneof=json yaml"`
}

// DefaultRedisAddr is used when Addr is empty.
const DefaultRedisAddr = "localhost:6379"

// Redis reads a description with GET <key>.
type Redis struct {
	cfg    RedisConfig
	once   sync.Once
	client *redis.Client
}

// NewRedis returns a source for cfg. The client connects on first use.
func NewRedis(cfg RedisConfig) *Redis {
	if cfg.Addr == "" {
		cfg.Addr = DefaultRedisAddr
	}
	if cfg.Format == "" {
		cfg.Format = graph.FormatJSON
	}
	return &Redis{cfg: cfg}
}

// NewRedisWithClient reads key through an existing client.
func NewRedisWithClient(client *redis.Client, key string) *Redis {
	s := NewRedis(RedisConfig{Key: key})
	s.once.Do(func() {})
	s.client = client
	return s
}

func (s *Redis) String() string { return "redis://" + s.cfg.Addr + "/" + s.cfg.Key }

func (s *Redis) conn() *redis.Client {
	s.once.Do(func() {
		s.client = redis.NewClient(&redis.Options{
			Addr:     s.cfg.Addr,
			Password: s.cfg.Password,
			DB:       s.cfg.DB,
		})
	})
	return s.client
}

func (s *Redis) Fetch(ctx context.Context) (graph.Document, error) {
	data, err := s.Raw(ctx)
	if err != nil {
		return graph.Document{}, err
	}
	return decode(s, data, s.cfg.Format)
}

func (s *Redis) Raw(ctx context.Context) ([]byte, error) {
	data, err := s.conn().Get(ctx, s.cfg.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, tverrors.New(tverrors.ErrCodeFetch, "%s: key not found", s)
	}
	if err != nil {
		return nil, tverrors.Wrap(tverrors.ErrCodeFetch, err, "GET %s", s)
	}
	return data, nil
}

// Close releases the client.
func (s *Redis) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
