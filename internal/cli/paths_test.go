package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/storyflow/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(os.Stdout, os.Stderr, LogInfo)

	store, err := c.newCache(true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(interface{ Dir() string }); ok {
		t.Error("--no-cache should not open the file cache")
	}

	c.Config.Cache.Disabled = true
	store, err = c.newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(interface{ Dir() string }); ok {
		t.Error("a disabled cache config should not open the file cache")
	}

	c.Config.Cache.Disabled = false
	store, err = c.newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(interface{ Dir() string }); !ok {
		t.Errorf("newCache() = %T, want the file cache", store)
	}
}

func TestNewCacheRedis(t *testing.T) {
	c := New(os.Stdout, os.Stderr, LogInfo)
	c.Config.Cache.RedisURL = "redis://localhost:6379/0"

	store, err := c.newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, ok := store.(*cache.RedisCache); !ok {
		t.Errorf("newCache() = %T, want the redis cache", store)
	}
}
