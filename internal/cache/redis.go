package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/redis/go-redis/v9"
)

const opTimeout = 3 * time.Second

var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis stores JSON encoded values in redis under a key prefix
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(key string, value any) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return persist.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read %s from redis, %w", key, err)
	}

	return json.Unmarshal(b, value)
}

func (r *Redis) Set(key string, value any, expire time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value, %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.client.Set(ctx, r.prefix+key, b, expire).Err()
}

func (r *Redis) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *Redis) CompareAndDelete(key, expected string) (bool, error) {
	b, err := json.Marshal(expected)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n, err := compareAndDelete.Run(ctx, r.client, []string{r.prefix + key}, string(b)).Int()
	if err != nil {
		return false, fmt.Errorf("failed to compare and delete %s, %w", key, err)
	}

	return n == 1, nil
}
