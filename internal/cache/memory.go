package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/chenyahui/gin-cache/persist"
)

// Memory is an in-process store. CompareAndDelete is atomic against other
// callers of CompareAndDelete and Set on the same Memory value.
type Memory struct {
	mu sync.Mutex
	*persist.MemoryStore
}

func NewMemory(defaultExpiration time.Duration) *Memory {
	return &Memory{MemoryStore: persist.NewMemoryStore(defaultExpiration)}
}

func (m *Memory) Set(key string, value any, expire time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.MemoryStore.Set(key, value, expire)
}

func (m *Memory) CompareAndDelete(key, expected string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current string
	if err := m.MemoryStore.Get(key, &current); err != nil {
		if errors.Is(err, persist.ErrCacheMiss) {
			return false, nil
		}

		return false, err
	}

	if current != expected {
		return false, nil
	}

	return true, m.MemoryStore.Delete(key)
}
