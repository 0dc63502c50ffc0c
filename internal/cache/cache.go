// Package cache provides keyed TTL caches. Expiry is evaluated on Load:
// entries older than the TTL are treated as absent and evicted.
package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

var ErrUnknownBackend = errors.New("unknown cache backend")

// Clock is shared with gcache so tests can drive both backends with
// gcache.NewFakeClock.
type Clock = gcache.Clock

type Cache[T any] interface {
	Load(key string) (T, bool)
	Save(key string, value T) error
	Clear(key string) error
	ClearAll() error
}

type Options struct {
	Backend string
	Dir     string
	Size    int
	Clock   Clock
}

// New builds a cache named name (used as the file prefix or for logging)
// with the given TTL on the configured backend.
func New[T any](name string, ttl time.Duration, opts Options) (Cache[T], error) {
	clock := opts.Clock
	if clock == nil {
		clock = gcache.NewRealClock()
	}

	switch opts.Backend {
	case BackendFile, "":
		return NewFile[T](opts.Dir, name, ttl, clock)
	case BackendMemory:
		return NewMemory[T](opts.Size, ttl, clock), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
