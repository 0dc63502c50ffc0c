package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bluele/gcache"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func backends(t *testing.T, ttl time.Duration) map[string]func(gcache.FakeClock) Cache[sample] {
	dir := t.TempDir()
	return map[string]func(gcache.FakeClock) Cache[sample]{
		BackendFile: func(clock gcache.FakeClock) Cache[sample] {
			c, err := New[sample]("sample", ttl, Options{Backend: BackendFile, Dir: dir, Clock: clock})
			if err != nil {
				t.Fatalf("New file cache: %v", err)
			}
			return c
		},
		BackendMemory: func(clock gcache.FakeClock) Cache[sample] {
			c, err := New[sample]("sample", ttl, Options{Backend: BackendMemory, Size: 10, Clock: clock})
			if err != nil {
				t.Fatalf("New memory cache: %v", err)
			}
			return c
		},
	}
}

func TestCacheTTLBoundary(t *testing.T) {
	const ttl = time.Hour
	const eps = time.Second

	for name, build := range backends(t, ttl) {
		t.Run(name, func(t *testing.T) {
			clock := gcache.NewFakeClock()
			c := build(clock)

			if err := c.Save("k", sample{Name: "a", Count: 1}); err != nil {
				t.Fatalf("Save: %v", err)
			}

			clock.Advance(ttl - eps)
			got, ok := c.Load("k")
			if !ok {
				t.Fatal("entry should still be present before the TTL elapses")
			}
			if got.Name != "a" || got.Count != 1 {
				t.Errorf("Load = %+v, want {a 1}", got)
			}

			clock.Advance(2 * eps)
			if _, ok := c.Load("k"); ok {
				t.Fatal("entry should be absent after the TTL elapsed")
			}
		})
	}
}

func TestCacheClear(t *testing.T) {
	for name, build := range backends(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			c := build(gcache.NewFakeClock())

			for _, k := range []string{"1_0", "1_1", "2_0"} {
				if err := c.Save(k, sample{Name: k}); err != nil {
					t.Fatalf("Save(%s): %v", k, err)
				}
			}

			if err := c.Clear("1_0"); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if _, ok := c.Load("1_0"); ok {
				t.Error("cleared key should be absent")
			}
			if _, ok := c.Load("1_1"); !ok {
				t.Error("other keys should survive Clear")
			}

			if err := c.Clear("missing"); err != nil {
				t.Errorf("Clear of a missing key should not fail: %v", err)
			}

			if err := c.ClearAll(); err != nil {
				t.Fatalf("ClearAll: %v", err)
			}
			for _, k := range []string{"1_1", "2_0"} {
				if _, ok := c.Load(k); ok {
					t.Errorf("key %s should be absent after ClearAll", k)
				}
			}
		})
	}
}

func TestFileCacheEvictsExpiredEntry(t *testing.T) {
	dir := t.TempDir()
	clock := gcache.NewFakeClock()

	c, err := NewFile[sample](dir, "stops", time.Minute, clock)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := c.Save("", sample{Name: "x"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(dir, "stops.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}

	clock.Advance(2 * time.Minute)
	if _, ok := c.Load(""); ok {
		t.Fatal("expired entry returned")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expired entry file should be removed, stat err = %v", err)
	}
}

func TestFileCacheClearAllKeepsOtherCaches(t *testing.T) {
	dir := t.TempDir()
	clock := gcache.NewFakeClock()

	routes, _ := NewFile[sample](dir, "routes", time.Hour, clock)
	routes2, _ := NewFile[sample](dir, "routes2", time.Hour, clock)

	_ = routes.Save("", sample{Name: "r"})
	_ = routes2.Save("", sample{Name: "r2"})

	if err := routes.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if _, ok := routes.Load(""); ok {
		t.Error("routes should be cleared")
	}
	if _, ok := routes2.Load(""); !ok {
		t.Error("routes2 should not be touched by routes.ClearAll")
	}
}

func TestFileCacheDropsCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewFile[sample](dir, "trassa", time.Hour, gcache.NewFakeClock())

	path := filepath.Join(dir, "trassa_13_0.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Load("13_0"); ok {
		t.Fatal("corrupt entry should be treated as absent")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New[sample]("x", time.Hour, Options{Backend: "redis"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("err = %v, want ErrUnknownBackend", err)
	}
}
