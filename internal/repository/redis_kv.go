package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/nikolayk812/spicecart/internal/port"
	"github.com/nikolayk812/spicecart/pkg/config"
	"github.com/redis/go-redis/v9"
	"strings"
	"time"
)

const redisKeyNamespace = "spice"

type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type RedisOptions struct {
	// TTL of zero keeps entries forever.
	TTL time.Duration
	// MaxValueBytes of zero disables the per-value limit.
	MaxValueBytes int
}

type redisKV struct {
	store cmdable
	opts  RedisOptions
}

func NewRedisKV(client redis.Cmdable, opts RedisOptions) port.KVStore {
	return &redisKV{store: client, opts: opts}
}

// NewRedisClient bootstraps a Redis client with pooling and timeouts and
// verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redisOptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func redisOptionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (r *redisKV) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("key is empty")
	}

	value, err := r.store.Get(ctx, r.buildKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis.Get: %w", mapRedisError(err))
	}

	return value, true, nil
}

func (r *redisKV) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}
	if r.opts.MaxValueBytes > 0 && len(value) > r.opts.MaxValueBytes {
		return fmt.Errorf("key[%s] value of %d bytes exceeds %d: %w",
			key, len(value), r.opts.MaxValueBytes, port.ErrQuotaExceeded)
	}

	if err := r.store.Set(ctx, r.buildKey(key), value, r.opts.TTL).Err(); err != nil {
		return fmt.Errorf("redis.Set: %w", mapRedisError(err))
	}

	return nil
}

func (r *redisKV) buildKey(key string) string {
	return redisKeyNamespace + ":" + strings.TrimSpace(key)
}

// mapRedisError treats maxmemory rejections as a full store and everything
// else as an unreachable one.
func mapRedisError(err error) error {
	var redisErr redis.Error
	if errors.As(err, &redisErr) && strings.HasPrefix(redisErr.Error(), "OOM") {
		return fmt.Errorf("%w: %w", port.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: %w", port.ErrUnavailable, err)
}
