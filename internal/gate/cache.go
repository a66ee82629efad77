package gate

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/slopwatch/slopwatch/internal/types"
)

// Fingerprint returns the stable cache key for (content, category): a
// sha256 over the content bytes, a NUL separator, and the category name.
func Fingerprint(content string, category types.Category) string {
	h := sha256.New()
	h.Write([]byte(content))
	h.Write([]byte{0})
	h.Write([]byte(category))
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash returns the content-only hash used by the novelty store,
// which deliberately ignores the category.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Cache memoizes verdicts by fingerprint. Entries are write-once: a stored
// verdict is returned unchanged on every hit. Eviction is LRU by entry
// count, bounding the unbounded growth of a naive map.
type Cache struct {
	entries *lru.Cache[string, *types.ValidationVerdict]
}

// DefaultCacheSize bounds the verdict cache when no capacity is configured.
const DefaultCacheSize = 4096

// NewCache creates a verdict cache holding up to size entries.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *types.ValidationVerdict](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

// Get returns the cached verdict for the fingerprint, if present.
func (c *Cache) Get(fingerprint string) (*types.ValidationVerdict, bool) {
	return c.entries.Get(fingerprint)
}

// Put stores a verdict. Existing entries are never overwritten: the first
// verdict written for a fingerprint wins.
func (c *Cache) Put(fingerprint string, verdict *types.ValidationVerdict) {
	if _, ok := c.entries.Get(fingerprint); ok {
		return
	}
	c.entries.Add(fingerprint, verdict)
}

// Len returns the number of cached verdicts.
func (c *Cache) Len() int {
	return c.entries.Len()
}
