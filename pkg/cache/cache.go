// Package cache provides XDG-compliant caching of dry-run query results.
//
// Dry-run responses are pure computations over a provider and a
// candidate configuration, which makes them safe to cache between CLI
// invocations. Entries are JSON files keyed by a SHA-256 hash of the
// provider id and the canonicalized configuration, stored under the XDG
// cache directory.
//
// A successful configure call changes what reader-side queries must
// observe, so the session invalidates all of the provider's entries
// afterwards via InvalidateProvider.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"

	"github.com/EnvForge/envforge/pkg/provider"
)

// ErrCacheMiss is returned when a cache entry is not found.
var ErrCacheMiss = fmt.Errorf("cache miss")

// QueryCache caches dry-run responses on disk.
type QueryCache struct {
	// BaseDir is the cache directory.
	BaseDir string
	// DefaultTTL is the default entry time-to-live.
	DefaultTTL time.Duration
}

// CachedResult is one stored dry-run response.
type CachedResult struct {
	// Provider is the provider id the query was issued for.
	Provider string `json:"provider"`
	// Config is the configuration the query was issued with.
	Config map[string]string `json:"config"`
	// Options is the option set the service returned.
	Options provider.OptionSet `json:"options"`
	// FetchedAt is when the response was stored.
	FetchedAt time.Time `json:"fetched_at"`
}

// NewQueryCache creates a cache rooted at the XDG cache directory for
// the application.
func NewQueryCache(appName string) (*QueryCache, error) {
	baseDir := filepath.Join(xdg.CacheHome, appName, "queries")

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &QueryCache{
		BaseDir:    baseDir,
		DefaultTTL: 5 * time.Minute,
	}, nil
}

// Get retrieves a cached dry-run result for the provider and config.
func (c *QueryCache) Get(providerID string, config map[string]string) (*CachedResult, error) {
	path := c.entryPath(providerID, config)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrCacheMiss
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var cached CachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}

	return &cached, nil
}

// Set stores a dry-run result.
func (c *QueryCache) Set(providerID string, config map[string]string, set provider.OptionSet) error {
	cached := &CachedResult{
		Provider:  providerID,
		Config:    config,
		Options:   set,
		FetchedAt: time.Now(),
	}

	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := os.WriteFile(c.entryPath(providerID, config), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// IsValid checks whether a cached result is still fresh.
func (c *QueryCache) IsValid(cached *CachedResult, ttl time.Duration) bool {
	if cached == nil {
		return false
	}
	if ttl == 0 {
		ttl = c.DefaultTTL
	}
	return time.Since(cached.FetchedAt) < ttl
}

// InvalidateProvider removes every cached entry for the provider. Called
// after a successful configure so any other reader observes the update.
func (c *QueryCache) InvalidateProvider(providerID string) error {
	entries, err := os.ReadDir(c.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(c.BaseDir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var cached CachedResult
		if err := json.Unmarshal(data, &cached); err != nil {
			continue
		}

		if cached.Provider != providerID {
			continue
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cache file %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// Clear removes all cached entries.
func (c *QueryCache) Clear() error {
	entries, err := os.ReadDir(c.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			path := filepath.Join(c.BaseDir, entry.Name())
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove cache file %s: %w", entry.Name(), err)
			}
		}
	}

	return nil
}

// Prune removes expired entries and returns how many were removed.
func (c *QueryCache) Prune(ttl time.Duration) (int, error) {
	if ttl == 0 {
		ttl = c.DefaultTTL
	}

	entries, err := os.ReadDir(c.BaseDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	pruned := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(c.BaseDir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var cached CachedResult
		if err := json.Unmarshal(data, &cached); err != nil {
			continue
		}

		if time.Since(cached.FetchedAt) >= ttl {
			if err := os.Remove(path); err == nil {
				pruned++
			}
		}
	}

	return pruned, nil
}

// Stats contains cache statistics.
type Stats struct {
	TotalEntries int
	TotalSize    int64
}

// GetStats returns cache statistics.
func (c *QueryCache) GetStats() (*Stats, error) {
	entries, err := os.ReadDir(c.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	stats := &Stats{}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			stats.TotalEntries++
			if info, err := entry.Info(); err == nil {
				stats.TotalSize += info.Size()
			}
		}
	}

	return stats, nil
}

// entryPath derives the file path for a provider/config pair. The
// config is canonicalized by sorted key order so equal configurations
// hash equally.
func (c *QueryCache) entryPath(providerID string, config map[string]string) string {
	keys := make([]string, 0, len(config))
	for key := range config {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	hasher.Write([]byte(providerID))
	for _, key := range keys {
		fmt.Fprintf(hasher, "\x00%s\x00%s", key, config[key])
	}

	return filepath.Join(c.BaseDir, hex.EncodeToString(hasher.Sum(nil))+".json")
}
