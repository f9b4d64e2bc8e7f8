package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lucas-hudsn/wavereader/internal/models"
)

// Key builds the cache key for a coordinate, rounding both values to three
// decimal places (~111m). Requests whose raw coordinates round to the same
// key share one upstream fetch.
func Key(latitude, longitude float64) string {
	return fmt.Sprintf("env:%s:%s", roundCoord(latitude), roundCoord(longitude))
}

func roundCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// SnapshotCache defines the interface for environmental snapshot caching
// implementations. Get returns cached data if present and not expired, Set
// stores data with TTL.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (models.EnvironmentalSnapshot, bool, error)
	Set(ctx context.Context, key string, value models.EnvironmentalSnapshot, ttl time.Duration) error
}

// InMemorySnapshotCache implements SnapshotCache with a mutex-guarded map and
// TTL-based expiration. Expired entries are removed on access, never swept;
// the key universe is the finite set of distinct break coordinates, so
// unbounded growth is accepted.
type InMemorySnapshotCache struct {
	mu   sync.Mutex
	data map[string]cacheEntry
}

// cacheEntry stores a cached snapshot with its expiration timestamp.
type cacheEntry struct {
	value     models.EnvironmentalSnapshot
	expiresAt time.Time
}

// NewInMemorySnapshotCache creates a new in-memory cache instance.
func NewInMemorySnapshotCache() *InMemorySnapshotCache {
	return &InMemorySnapshotCache{
		data: make(map[string]cacheEntry),
	}
}

// Get retrieves the cached snapshot for the key if present and not expired.
// Returns (data, true, nil) on cache hit, (zero, false, nil) on miss or
// expiration.
func (c *InMemorySnapshotCache) Get(ctx context.Context, key string) (models.EnvironmentalSnapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		return models.EnvironmentalSnapshot{}, false, nil
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.data, key)
		return models.EnvironmentalSnapshot{}, false, nil
	}

	return entry.value, true, nil
}

// Set stores a snapshot with the specified TTL, overwriting any prior entry
// for the key.
func (c *InMemorySnapshotCache) Set(ctx context.Context, key string, value models.EnvironmentalSnapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}
