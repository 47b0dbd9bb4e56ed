package cache

import (
	"context"
	"sync"
	"time"

	"github.com/IbbyMan/citypane/internal/models"
)

// DefaultTTL is how long a generated image stays fresh. Scene keys already
// discretize time, so the TTL only forces an eventual repaint of an otherwise
// unchanged scene.
const DefaultTTL = 20 * time.Minute

// keyPrefix namespaces every entry in shared backends.
const keyPrefix = "citypane_img_"

// Store persists generated images keyed by scene cache key.
//
// Get returns the image URL if an entry exists and is younger than the TTL;
// expired entries are deleted on read (lazy eviction, no background sweep).
// Set unconditionally overwrites with a fresh timestamp. Evict removes an
// entry regardless of age; forced refresh uses it so a still-fresh entry
// cannot short-circuit the re-fetch.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, imageURL string) error
	Evict(ctx context.Context, key string) error
}

// InMemoryStore implements Store with a mutex-guarded map.
type InMemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]models.CacheEntry
}

// NewInMemoryStore creates an in-memory store. A non-positive ttl falls back
// to DefaultTTL.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryStore{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]models.CacheEntry),
	}
}

// Get returns the cached image URL for key if present and unexpired. A stale
// entry is removed as a side effect and reported as a miss.
func (s *InMemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.data[key]
	if !ok {
		return "", false, nil
	}
	if entry.Age(s.now()) >= s.ttl {
		delete(s.data, key)
		return "", false, nil
	}
	return entry.ImageURL, true, nil
}

// Set stores imageURL under key, overwriting any existing entry.
func (s *InMemoryStore) Set(ctx context.Context, key, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = models.CacheEntry{
		ImageURL:  imageURL,
		Timestamp: s.now().UnixMilli(),
	}
	return nil
}

// Evict removes the entry for key regardless of its age.
func (s *InMemoryStore) Evict(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
