package cache

import (
	"context"
	"os"
	"path/filepath"
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
		t.Error("NullCache.Get should always miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundtrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "geom:abc", []byte("geometry"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "geom:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || string(data) != "geometry" {
		t.Errorf("Get = (%q, %v), want hit with stored bytes", data, hit)
	}

	if err := c.Delete(ctx, "geom:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "geom:abc"); hit {
		t.Error("Get after Delete should miss")
	}
	// Deleting again is fine.
	if err := c.Delete(ctx, "geom:abc"); err != nil {
		t.Errorf("second Delete error: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("v"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, hit, err := c.Get(ctx, "key"); err != nil || hit {
		t.Errorf("expired entry: hit=%v err=%v, want miss", hit, err)
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	// Clobber the entry on disk.
	hash := Hash([]byte("key"))
	path := filepath.Join(dir, hash[:2], hash[2:]+".json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "key"); err != nil || hit {
		t.Errorf("corrupt entry: hit=%v err=%v, want silent miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed on read")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// Same inputs, same key.
	gk1 := k.GeometryKey("fp123", GeometryKeyOpts{Width: 1200, Height: 700})
	gk2 := k.GeometryKey("fp123", GeometryKeyOpts{Width: 1200, Height: 700})
	if gk1 != gk2 {
		t.Error("GeometryKey should be deterministic")
	}

	// Any option change invalidates.
	if gk3 := k.GeometryKey("fp123", GeometryKeyOpts{Width: 1201, Height: 700}); gk1 == gk3 {
		t.Error("different viewports should produce different keys")
	}
	if gk4 := k.GeometryKey("fp124", GeometryKeyOpts{Width: 1200, Height: 700}); gk1 == gk4 {
		t.Error("different fingerprints should produce different keys")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", Variant: "before"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png", Variant: "before"})
	if ak1 == ak2 {
		t.Error("different formats should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "project:acme:")

	key := scoped.GeometryKey("fp", GeometryKeyOpts{Width: 800, Height: 600})
	if len(key) < 13 || key[:13] != "project:acme:" {
		t.Errorf("ScopedKeyer key should be prefixed: %s", key)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "p:")
	plain := NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{Format: "svg"})
	if got := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}); got != "p:"+plain {
		t.Errorf("nil inner should fall back to the default keyer: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrCacheMiss) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try.
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("first-try success: err=%v calls=%d", err, calls)
	}

	// Non-retryable error stops immediately.
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrCacheMiss
	})
	if err != ErrCacheMiss || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	// Retryable error triggers retries.
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("should return context error: %v", err)
	}
}
