package secrets

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "hookflow:secret:"

// RedisResolver resolves secrets stored as plain keys in Redis under
// "hookflow:secret:<name>". Values are read on every resolution; caching
// is the invocation context's concern, not the resolver's.
type RedisResolver struct {
	client redis.UniversalClient
}

func NewRedisResolver(client redis.UniversalClient) *RedisResolver {
	return &RedisResolver{client: client}
}

// NewRedisResolverFromURL connects using a redis:// URL.
func NewRedisResolverFromURL(url string) (*RedisResolver, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	return &RedisResolver{client: redis.NewClient(opts)}, nil
}

func (r *RedisResolver) Resolve(ctx context.Context, name string) (string, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return "", notFound(name)
	}

	if err != nil {
		return "", fmt.Errorf("reading secret %q: %w", name, err)
	}

	return value, nil
}

// Close releases the underlying connection pool.
func (r *RedisResolver) Close() error {
	return r.client.Close()
}
