package store

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// RedisBackend stores one JSON-encoded string value per collection key.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend connects to the remote key-value service. The URL may be a
// redis:// connection string; a bare host:port with a separate token also works.
func NewRedisBackend(url, token string) *RedisBackend {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{
			Addr:     url,
			Password: token,
		}
	} else if opts.Password == "" {
		opts.Password = token
	}
	return &RedisBackend{client: redis.NewClient(opts)}
}

// NewRedisBackendWithClient wraps an existing client. Tests use this with a
// client pointed at a local instance.
func NewRedisBackendWithClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Name() string { return "kv" }

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyMissing
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, data []byte) error {
	// Records are retained indefinitely, so no TTL.
	return r.client.Set(ctx, key, data, 0).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
