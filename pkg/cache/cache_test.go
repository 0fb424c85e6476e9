package cache

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/EnvForge/envforge/pkg/provider"
)

func writeEntry(c *QueryCache, providerID string, config map[string]string, cached *CachedResult) error {
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return os.WriteFile(c.entryPath(providerID, config), data, 0644)
}

func newTestCache(t *testing.T) *QueryCache {
	t.Helper()
	return &QueryCache{
		BaseDir:    t.TempDir(),
		DefaultTTL: 5 * time.Minute,
	}
}

func testOptions() provider.OptionSet {
	return provider.OptionSet{
		"region": {Value: "eu-west-1", Required: true},
	}
}

func TestSetAndGet(t *testing.T) {
	c := newTestCache(t)
	config := map[string]string{"region": "eu-west-1"}

	if err := c.Set("cloudvm", config, testOptions()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	cached, err := c.Get("cloudvm", config)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if cached.Provider != "cloudvm" {
		t.Errorf("Provider = %q, want cloudvm", cached.Provider)
	}
	if cached.Options["region"].Value != "eu-west-1" {
		t.Errorf("cached option value = %q", cached.Options["region"].Value)
	}
	if cached.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get("cloudvm", nil)
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("error = %v, want ErrCacheMiss", err)
	}
}

func TestKeyDependsOnConfig(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("cloudvm", map[string]string{"region": "a"}, testOptions()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := c.Get("cloudvm", map[string]string{"region": "b"}); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("different config should miss, got %v", err)
	}
	if _, err := c.Get("other", map[string]string{"region": "a"}); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("different provider should miss, got %v", err)
	}
}

func TestIsValid(t *testing.T) {
	c := newTestCache(t)

	if c.IsValid(nil, 0) {
		t.Error("nil result should not be valid")
	}

	fresh := &CachedResult{FetchedAt: time.Now()}
	if !c.IsValid(fresh, 0) {
		t.Error("fresh result should be valid under the default TTL")
	}

	stale := &CachedResult{FetchedAt: time.Now().Add(-time.Hour)}
	if c.IsValid(stale, 0) {
		t.Error("hour-old result should be stale")
	}
	if !c.IsValid(stale, 2*time.Hour) {
		t.Error("hour-old result should be valid under a two-hour TTL")
	}
}

func TestInvalidateProvider(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("cloudvm", nil, testOptions()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set("cloudvm", map[string]string{"region": "a"}, testOptions()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set("other", nil, testOptions()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := c.InvalidateProvider("cloudvm"); err != nil {
		t.Fatalf("InvalidateProvider() error = %v", err)
	}

	if _, err := c.Get("cloudvm", nil); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("cloudvm entry survived invalidation: %v", err)
	}
	if _, err := c.Get("cloudvm", map[string]string{"region": "a"}); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("cloudvm entry survived invalidation: %v", err)
	}
	if _, err := c.Get("other", nil); err != nil {
		t.Errorf("unrelated provider entry removed: %v", err)
	}
}

func TestClear(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("cloudvm", nil, testOptions()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalEntries != 0 {
		t.Errorf("entries after clear = %d, want 0", stats.TotalEntries)
	}
}

func TestPrune(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("fresh", nil, testOptions()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set("stale", nil, testOptions()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Age the stale entry by rewriting it with an old timestamp.
	cached, err := c.Get("stale", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	cached.FetchedAt = time.Now().Add(-time.Hour)
	if err := writeEntry(c, "stale", nil, cached); err != nil {
		t.Fatalf("rewrite entry: %v", err)
	}

	pruned, err := c.Prune(0)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	if _, err := c.Get("fresh", nil); err != nil {
		t.Errorf("fresh entry pruned: %v", err)
	}
	if _, err := c.Get("stale", nil); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("stale entry survived: %v", err)
	}
}

func TestGetStats(t *testing.T) {
	c := newTestCache(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := c.Set(id, nil, testOptions()); err != nil {
			t.Fatalf("Set(%s) error = %v", id, err)
		}
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.TotalEntries != 3 {
		t.Errorf("TotalEntries = %d, want 3", stats.TotalEntries)
	}
	if stats.TotalSize == 0 {
		t.Error("TotalSize should be non-zero")
	}
}
