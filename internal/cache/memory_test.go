package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want %q", got, "value")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("error after expiry = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("error after delete = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheGetOrSet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	computes := 0
	fn := func() ([]byte, error) {
		computes++
		return []byte("computed"), nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrSet(ctx, "key", time.Minute, fn)
		if err != nil {
			t.Fatalf("GetOrSet failed: %v", err)
		}
		if string(got) != "computed" {
			t.Errorf("GetOrSet = %q", got)
		}
	}

	if computes != 1 {
		t.Errorf("computes = %d, want 1", computes)
	}
}

func TestMemoryCacheGetOrSetErrorNotCached(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	wantErr := errors.New("upstream down")
	if _, err := c.GetOrSet(ctx, "key", time.Minute, func() ([]byte, error) {
		return nil, wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}

	// A failed compute must not leave a cached entry behind.
	got, err := c.GetOrSet(ctx, "key", time.Minute, func() ([]byte, error) {
		return []byte("recovered"), nil
	})
	if err != nil {
		t.Fatalf("GetOrSet after failure: %v", err)
	}
	if string(got) != "recovered" {
		t.Errorf("GetOrSet = %q, want %q", got, "recovered")
	}
}

func TestMemoryCacheValueIsolation(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	original := []byte("value")
	if err := c.Set(ctx, "key", original, time.Minute); err != nil {
		t.Fatal(err)
	}
	original[0] = 'X'

	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "value" {
		t.Errorf("cached value mutated through caller slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := c.Get(ctx, "key")
	if string(again) != "value" {
		t.Errorf("cached value mutated through returned slice: %q", again)
	}
}
