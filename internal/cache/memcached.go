package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/IbbyMan/citypane/internal/models"
)

// MemcachedStore implements Store on memcached, sharing cached images across
// processes. Entries are JSON-encoded CacheEntry values; memcached's own
// expiration is set to the TTL, and the entry timestamp is still checked on
// read so the freshness law holds even if server expiry lags.
type MemcachedStore struct {
	client *memcache.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewMemcachedStore creates a MemcachedStore. addrs is a comma-separated list
// (e.g. "localhost:11211" or "host1:11211,host2:11211"). timeout and
// maxIdleConns configure the client; both use package defaults if zero.
func NewMemcachedStore(addrs string, ttl, timeout time.Duration, maxIdleConns int) (*MemcachedStore, error) {
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
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemcachedStore{client: client, ttl: ttl, now: time.Now}, nil
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

func (s *MemcachedStore) key(k string) string {
	return keyPrefix + k
}

// Get implements Store.Get. Returns false, nil on miss; false, err on backend error.
func (s *MemcachedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if ctx.Err() != nil {
		return "", false, ctx.Err()
	}
	item, err := s.client.Get(s.key(key))
	if err != nil {
		if err == memcache.ErrCacheMiss {
			return "", false, nil
		}
		return "", false, err
	}
	var entry models.CacheEntry
	if err := json.Unmarshal(item.Value, &entry); err != nil {
		return "", false, err
	}
	if entry.Age(s.now()) >= s.ttl {
		_ = s.client.Delete(s.key(key))
		return "", false, nil
	}
	return entry.ImageURL, true, nil
}

// Set implements Store.Set.
func (s *MemcachedStore) Set(ctx context.Context, key, imageURL string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	raw, err := json.Marshal(models.CacheEntry{
		ImageURL:  imageURL,
		Timestamp: s.now().UnixMilli(),
	})
	if err != nil {
		return err
	}
	return s.client.Set(&memcache.Item{
		Key:        s.key(key),
		Value:      raw,
		Expiration: int32(s.ttl.Seconds()),
	})
}

// Evict implements Store.Evict. A miss is not an error.
func (s *MemcachedStore) Evict(ctx context.Context, key string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := s.client.Delete(s.key(key)); err != nil && err != memcache.ErrCacheMiss {
		return err
	}
	return nil
}

// Ping checks if memcached is reachable. Used for health checks.
func (s *MemcachedStore) Ping() error {
	return s.client.Ping()
}

// Close closes the memcached client connections. Call during shutdown.
func (s *MemcachedStore) Close() error {
	return s.client.Close()
}
