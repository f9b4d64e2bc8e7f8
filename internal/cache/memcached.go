package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/lucas-hudsn/wavereader/internal/models"
)

const keyPrefix = "wavereader:"

// MemcachedSnapshotCache implements SnapshotCache using memcached, for
// deployments where several replicas should share one snapshot cache.
type MemcachedSnapshotCache struct {
	client *memcache.Client
}

// NewMemcachedSnapshotCache creates a MemcachedSnapshotCache. addrs is a
// comma-separated list (e.g. "localhost:11211" or "host1:11211,host2:11211").
// timeout and maxIdleConns configure the client; both use package defaults
// if zero.
func NewMemcachedSnapshotCache(addrs string, timeout time.Duration, maxIdleConns int) (*MemcachedSnapshotCache, error) {
	servers := parseAddrs(addrs)
	if len(servers) == 0 {
		servers = []string{"localhost:11211"}
	}
	client := memcache.New(servers...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	if maxIdleConns > 0 {
		client.MaxIdleConns = maxIdleConns
	}
	return &MemcachedSnapshotCache{client: client}, nil
}

func parseAddrs(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func (c *MemcachedSnapshotCache) key(k string) string {
	return keyPrefix + k
}

// Get implements SnapshotCache.Get. Returns false, nil on cache miss; false, err on error.
func (c *MemcachedSnapshotCache) Get(ctx context.Context, key string) (models.EnvironmentalSnapshot, bool, error) {
	if ctx.Err() != nil {
		return models.EnvironmentalSnapshot{}, false, ctx.Err()
	}
	item, err := c.client.Get(c.key(key))
	if err != nil {
		if err == memcache.ErrCacheMiss {
			return models.EnvironmentalSnapshot{}, false, nil
		}
		return models.EnvironmentalSnapshot{}, false, err
	}
	var snapshot models.EnvironmentalSnapshot
	if err := json.Unmarshal(item.Value, &snapshot); err != nil {
		return models.EnvironmentalSnapshot{}, false, err
	}
	return snapshot, true, nil
}

// Set implements SnapshotCache.Set.
func (c *MemcachedSnapshotCache) Set(ctx context.Context, key string, value models.EnvironmentalSnapshot, ttl time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	expSec := int32(ttl.Seconds())
	const maxRelativeExp = 30 * 24 * 60 * 60 // 30 days
	if expSec <= 0 || expSec > maxRelativeExp {
		expSec = 3600 // fallback 1h if invalid
	}
	return c.client.Set(&memcache.Item{
		Key:        c.key(key),
		Value:      raw,
		Expiration: expSec,
	})
}

// Ping checks memcached reachability for health checks.
func (c *MemcachedSnapshotCache) Ping() error {
	return c.client.Ping()
}

// Close releases idle connections.
func (c *MemcachedSnapshotCache) Close() error {
	return c.client.Close()
}
