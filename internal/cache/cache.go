// Package cache provides the key-value stores with expiry used for
// activation entries and cached pages
package cache

import (
	"bitwise74/taskcamp/config"
	"fmt"
	"time"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key doesn't exist or has expired
var ErrMiss = persist.ErrCacheMiss

// Store is a gin-cache store that can also remove a key only while it
// still holds an expected string value. That makes read-check-delete
// sequences safe when several requests race for the same key.
type Store interface {
	persist.CacheStore

	// CompareAndDelete deletes key if its current value equals expected and
	// reports whether it did
	CompareAndDelete(key, expected string) (bool, error)
}

// New builds the store selected in the config. The redis client is only
// used by the redis store and may be nil otherwise.
func New(cfg config.Cache, rdb *redis.Client) (Store, error) {
	switch cfg.Store {
	case "memory":
		return NewMemory(time.Minute), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis cache store needs a redis client")
		}

		return NewRedis(rdb, "taskcamp:cache:"), nil
	}

	return nil, fmt.Errorf("unsupported cache store %q", cfg.Store)
}
