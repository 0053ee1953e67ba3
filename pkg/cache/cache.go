// Package cache stores Graphviz output keyed by the command and its input.
//
// Layout is deterministic for a given Graphviz build, so the output of
// "dot -K<engine> -T<format>" over the same bytes can be reused. The CLI
// uses a FileCache under the user cache directory; the HTTP server can
// share a RedisCache between replicas.
//
// Keys come from a Keyer so that deployments can namespace them:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "graphviz-2.44.1:")
//	key := keyer.PipeKey(cmd.Argv(), input)
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/dotpipe/pkg/observability"
)

// Cache is a byte store with per-entry expiry. Get reports a miss with
// ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// PipeKey identifies the output of a layout command run over input.
	PipeKey(argv []string, input []byte) string

	// VersionKey identifies the version banner of a binary.
	VersionKey(binary string) string
}

// Key types reported to observability hooks.
const (
	KeyTypePipe    = "pipe"
	KeyTypeVersion = "version"
)

// Fetch returns the cached value for key, or calls fill and stores its
// result for ttl. Errors from fill are returned and nothing is stored.
// A failing cache is treated as a miss so that rendering still works when
// the store is down.
func Fetch(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, fill func() ([]byte, error)) ([]byte, error) {
	if c == nil {
		return fill()
	}

	hooks := observability.Cache()
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := fill()
	if err != nil {
		return nil, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, nil
}
