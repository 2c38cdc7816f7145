package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestBolt(t *testing.T) *BoltCache {
	t.Helper()
	c, err := NewBoltCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewBoltCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBoltCache(t *testing.T) {
	ctx := context.Background()
	c := newTestBolt(t)

	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != "payload" {
		t.Errorf("Get = %q, want %q", data, "payload")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestBoltCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newTestBolt(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
}

func TestBoltCacheClearAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := NewBoltCache(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "kept", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	c, err = NewBoltCache(path)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.Path() != path {
		t.Errorf("Path() = %s, want %s", c.Path(), path)
	}
	if _, hit, _ := c.Get(ctx, "kept"); !hit {
		t.Error("entry should survive reopen")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "kept"); hit {
		t.Error("Clear should remove entries")
	}
	if err := c.Set(ctx, "after", []byte("v"), 0); err != nil {
		t.Errorf("Set after Clear: %v", err)
	}
}
