package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// File cache for rendered widget markup, keyed by instance id. The hash
// suffix in the filename binds a cache file to its exact key, so a stale or
// recycled id can never be served another instance's output.

const widgetCacheDir = "cache/widgets"

// GetCachePath returns the cache file path for a widget instance.
func GetCachePath(instanceID int) string {
	key := fmt.Sprintf("widget:%d", instanceID)
	hash := generateHash(key)
	return filepath.Join(widgetCacheDir, fmt.Sprintf("%d_%s.html", instanceID, hash[:16]))
}

// generateHash generates an xxHash hash for the given string
func generateHash(s string) string {
	hash := xxhash.Sum64String(s)
	return fmt.Sprintf("%016x", hash)
}

// EnsureCacheDir ensures the cache directory exists
func EnsureCacheDir() error {
	return os.MkdirAll(widgetCacheDir, 0755)
}

// Write stores rendered markup for an instance.
func Write(instanceID int, html string) error {
	if err := EnsureCacheDir(); err != nil {
		return err
	}
	return os.WriteFile(GetCachePath(instanceID), []byte(html), 0644)
}

// Read returns cached markup if present and not expired.
func Read(instanceID int, maxAge time.Duration) (string, bool) {
	cachePath := GetCachePath(instanceID)

	info, err := os.Stat(cachePath)
	if err != nil {
		return "", false
	}

	// Check if cache is expired
	if time.Since(info.ModTime()) > maxAge {
		return "", false
	}

	content, err := os.ReadFile(cachePath)
	if err != nil {
		return "", false
	}

	return string(content), true
}

// Clear removes the cache entry for one instance. Missing files are fine.
func Clear(instanceID int) error {
	err := os.Remove(GetCachePath(instanceID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearAll removes every cached widget render.
func ClearAll() error {
	return os.RemoveAll(widgetCacheDir)
}

// ClearOld removes cache files older than the specified duration.
func ClearOld(maxAge time.Duration) error {
	return filepath.Walk(widgetCacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			return nil
		}

		if !strings.HasSuffix(path, ".html") {
			return nil
		}

		if time.Since(info.ModTime()) > maxAge {
			os.Remove(path)
		}

		return nil
	})
}
