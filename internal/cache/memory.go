package cache

import (
	"time"

	"github.com/bluele/gcache"
)

const defaultMemorySize = 10000

// Memory is an LRU cache with per-entry expiration backed by gcache.
type Memory[T any] struct {
	cache gcache.Cache
}

func NewMemory[T any](size int, ttl time.Duration, clock Clock) *Memory[T] {
	if size <= 0 {
		size = defaultMemorySize
	}

	return &Memory[T]{
		cache: gcache.New(size).
			LRU().
			Expiration(ttl).
			Clock(clock).
			Build(),
	}
}

func (c *Memory[T]) Load(key string) (T, bool) {
	var zero T

	v, err := c.cache.Get(key)
	if err != nil {
		return zero, false
	}

	value, ok := v.(T)
	if !ok {
		c.cache.Remove(key)
		return zero, false
	}
	return value, true
}

func (c *Memory[T]) Save(key string, value T) error {
	return c.cache.Set(key, value)
}

func (c *Memory[T]) Clear(key string) error {
	c.cache.Remove(key)
	return nil
}

func (c *Memory[T]) ClearAll() error {
	c.cache.Purge()
	return nil
}
