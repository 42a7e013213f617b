package layout

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/topovis/pkg/cache"
	"github.com/matzehuels/topovis/pkg/observability"
)

// CachedEngine reuses engine output for identical DOT input. Concurrent
// runs of the same input share one engine call.
type CachedEngine struct {
	engine Engine
	cache  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger
	flight singleflight.Group
}

// NewCachedEngine wraps engine with c. A nil keyer uses the default one.
func NewCachedEngine(engine Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *CachedEngine {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedEngine{engine: engine, cache: c, keyer: keyer, logger: logger}
}

// Run returns cached output when present, otherwise runs the engine and
// stores the result. Cache failures are logged and never fail the layout.
func (e *CachedEngine) Run(ctx context.Context, dot []byte) ([]byte, error) {
	key := e.keyer.LayoutKey(dot)
	hooks := observability.Cache()

	if data, hit, err := e.cache.Get(ctx, key); err != nil {
		e.logger.Warn("layout cache read failed", "err", err)
	} else if hit {
		hooks.OnCacheHit(ctx, "layout")
		return data, nil
	}
	hooks.OnCacheMiss(ctx, "layout")

	v, err, _ := e.flight.Do(key, func() (any, error) {
		out, err := e.engine.Run(ctx, dot)
		if err != nil {
			return nil, err
		}
		if err := e.cache.Set(ctx, key, out, cache.TTLLayout); err != nil {
			e.logger.Warn("layout cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "layout", len(out))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

var _ Engine = (*CachedEngine)(nil)
