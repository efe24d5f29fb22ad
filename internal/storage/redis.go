package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// RedisOptions parameterizes OpenRedis.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// Redis keeps the store in a shared Redis instance, with every key under
// the "<namespace>:" prefix. Unlike the sqlite adapter, reads do not fail
// open: a network error is worth surfacing, only redis.Nil maps to
// ErrKeyNotFound.
type Redis struct {
	client *redis.Client
	ns     string
	logger *zap.SugaredLogger
	closed atomic.Bool
}

// OpenRedis connects and pings the instance so a bad address fails at open
// rather than on first use.
func OpenRedis(opts RedisOptions, logger *zap.SugaredLogger) (*Redis, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ns := opts.Namespace
	if ns == "" {
		ns = types.DefaultNamespace
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}

	return &Redis{client: client, ns: ns, logger: logger}, nil
}

func (r *Redis) key(k string) string {
	return r.ns + ":" + k
}

// Get implements types.StorageAdapter.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if r.closed.Load() {
		return nil, types.ErrAdapterClosed
	}
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, types.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

// Set implements types.StorageAdapter. Entries never expire; this is a
// store, not a cache.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if r.closed.Load() {
		return types.ErrAdapterClosed
	}
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements types.StorageAdapter. Absent keys are ignored.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.closed.Load() {
		return types.ErrAdapterClosed
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Keys implements types.StorageAdapter. SCAN keeps the server responsive
// on large namespaces; KEYS would block it.
func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	if r.closed.Load() {
		return nil, types.ErrAdapterClosed
	}
	var keys []string
	iter := r.client.Scan(ctx, 0, r.key(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.ns+":"))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear implements types.StorageAdapter.
func (r *Redis) Clear(ctx context.Context, prefix string) error {
	if r.closed.Load() {
		return types.ErrAdapterClosed
	}
	var batch []string
	iter := r.client.Scan(ctx, 0, r.key(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	if len(batch) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, batch...).Err(); err != nil {
		return fmt.Errorf("redis clear %s: %w", prefix, err)
	}
	return nil
}

// Close implements types.StorageAdapter. Close is idempotent.
func (r *Redis) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	return r.client.Close()
}
