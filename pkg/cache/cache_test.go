package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if err := c.Set(ctx, "npm:lodash", []byte(`{"name":"lodash"}`), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, hit, err := c.Get(ctx, "npm:lodash")
	if err != nil || !hit {
		t.Fatalf("Get() = %v, %v; want hit", hit, err)
	}
	if !bytes.Equal(data, []byte(`{"name":"lodash"}`)) {
		t.Errorf("Get() data = %s", data)
	}
}

func TestFileCache_Miss(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	_, hit, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hit {
		t.Error("Get() returned hit for missing key")
	}
}

func TestFileCache_Expiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "key", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Fatal("expected hit before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expected miss after expiry")
	}
	if _, err := os.Stat(c.path("key")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get() = %v, %v; want miss without error", hit, err)
	}
}

func TestFileCache_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%q) error: %v", k, err)
		}
	}

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete() of missing key error: %v", err)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Clear() removed %d entries, want 2", n)
	}
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("entry survived Clear()")
	}
}

func TestFileCachePathLayout(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := "npm:https://registry.npmjs.org:@types/node"
	p := c.path(key)

	if p != c.path(key) {
		t.Error("path should be deterministic")
	}
	if p == c.path("npm:https://registry.npmjs.org:lodash") {
		t.Error("different keys should map to different files")
	}
	rel, err := filepath.Rel(c.Dir(), p)
	if err != nil {
		t.Fatal(err)
	}
	dir, file := filepath.Split(rel)
	if len(dir) != 3 || len(file) != 62+len(".json") {
		t.Errorf("path %q should be <2 hex>/<62 hex>.json", rel)
	}
	if strings.Contains(p, "registry.npmjs.org") {
		t.Errorf("path %q leaks the key", p)
	}
}
