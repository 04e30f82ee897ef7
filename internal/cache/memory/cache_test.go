package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/repository"
)

func TestCache_GetSetDelete(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, repository.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("expected value, got %q", got)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "key"); !errors.Is(err, repository.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, repository.ErrCacheMiss) {
		t.Errorf("expected expired key to miss, got %v", err)
	}

	// Zero TTL means no expiry.
	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := c.Get(ctx, "forever"); err != nil {
		t.Errorf("expected no expiry, got %v", err)
	}
}

func TestCache_Increment(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := c.Increment(ctx, "counter", 1)
		if err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}

	if err := c.Expire(ctx, "counter", 10*time.Millisecond); err != nil {
		t.Fatalf("Expire failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	// Counter restarts after the window expires.
	got, err := c.Increment(ctx, "counter", 1)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if got != 1 {
		t.Errorf("expected counter to restart at 1, got %d", got)
	}
}

func TestCache_ExpireMissingKey(t *testing.T) {
	c := NewCache()
	if err := c.Expire(context.Background(), "missing", time.Minute); !errors.Is(err, repository.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}
