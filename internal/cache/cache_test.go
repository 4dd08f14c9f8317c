package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "test:"), mr
}

func TestGetOrLoadJSONCachesValue(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	var loads int32
	load := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&loads, 1)
		return []string{"a", "b"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoadJSON(c, ctx, "books", time.Minute, load)
		if err != nil {
			t.Fatalf("load %d: %v", i, err)
		}
		if len(got) != 2 || got[0] != "a" {
			t.Fatalf("unexpected value: %v", got)
		}
	}
	if loads != 1 {
		t.Fatalf("expected 1 load, got %d", loads)
	}
	if !mr.Exists("test:books") {
		t.Fatalf("expected key to be stored under prefix")
	}

	mr.FastForward(2 * time.Minute)
	if _, err := GetOrLoadJSON(c, ctx, "books", time.Minute, load); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loads != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", loads)
	}
}

func TestGetOrLoadSharesConcurrentMiss(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	var loads int32
	release := make(chan struct{})
	load := func(ctx context.Context) ([]byte, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return []byte("v"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrLoad(ctx, "k", time.Minute, load); err != nil {
				t.Errorf("GetOrLoad: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	if loads != 1 {
		t.Fatalf("expected a single load, got %d", loads)
	}
}

func TestInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	mr.Set("test:books:all", "x")
	mr.Set("test:books:cat:fiction", "y")
	mr.Set("other:key", "z")

	if err := c.Invalidate(ctx, "books:*"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("test:books:all") || mr.Exists("test:books:cat:fiction") {
		t.Fatalf("expected catalog keys to be gone")
	}
	if !mr.Exists("other:key") {
		t.Fatalf("unrelated key must survive")
	}
}

func TestInvalidateDuringLoadSkipsStore(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	got, err := c.GetOrLoad(ctx, "books:all", time.Minute, func(ctx context.Context) ([]byte, error) {
		if err := c.Invalidate(ctx, "books:*"); err != nil {
			t.Fatalf("invalidate: %v", err)
		}
		return []byte("stale"), nil
	})
	if err != nil || string(got) != "stale" {
		t.Fatalf("GetOrLoad = %q, %v", got, err)
	}
	if mr.Exists("test:books:all") {
		t.Fatalf("a load overlapping an invalidation must not be cached")
	}

	got, err = c.GetOrLoad(ctx, "books:all", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	if err != nil || string(got) != "fresh" {
		t.Fatalf("GetOrLoad = %q, %v", got, err)
	}
	if v, _ := mr.Get("test:books:all"); v != "fresh" {
		t.Fatalf("cached value = %q, want fresh", v)
	}
}
