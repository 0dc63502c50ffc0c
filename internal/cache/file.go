package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type envelope[T any] struct {
	Timestamp time.Time     `json:"timestamp"`
	TTL       time.Duration `json:"ttl"`
	Data      T             `json:"data"`
}

// File stores every key as its own JSON document under dir. The write time
// and TTL are stored next to the value instead of relying on file mtime.
type File[T any] struct {
	dir   string
	name  string
	ttl   time.Duration
	clock Clock
}

func NewFile[T any](dir, name string, ttl time.Duration, clock Clock) (*File[T], error) {
	if dir == "" {
		dir = "cache"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &File[T]{dir: dir, name: name, ttl: ttl, clock: clock}, nil
}

func (c *File[T]) path(key string) string {
	if key == "" {
		return filepath.Join(c.dir, c.name+".json")
	}
	return filepath.Join(c.dir, c.name+"_"+sanitizeKey(key)+".json")
}

func (c *File[T]) Load(key string) (T, bool) {
	var zero T
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Cannot read cache entry", "cache", c.name, "key", key, "error", err)
		}
		return zero, false
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("Dropping unreadable cache entry", "cache", c.name, "key", key, "error", err)
		_ = os.Remove(path)
		return zero, false
	}

	if c.clock.Now().Sub(env.Timestamp) > env.TTL {
		_ = os.Remove(path)
		return zero, false
	}

	return env.Data, true
}

func (c *File[T]) Save(key string, value T) error {
	data, err := json.Marshal(envelope[T]{
		Timestamp: c.clock.Now(),
		TTL:       c.ttl,
		Data:      value,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	path := c.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return os.Rename(tmp, path)
}

func (c *File[T]) Clear(key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (c *File[T]) ClearAll() error {
	matches, err := filepath.Glob(filepath.Join(c.dir, c.name+"*.json"))
	if err != nil {
		return err
	}

	var errs []error
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".json")
		// skip other caches sharing the prefix, e.g. "routes" and "routes2"
		if base != c.name && !strings.HasPrefix(base, c.name+"_") {
			continue
		}
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
