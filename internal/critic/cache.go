package critic

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/ahrav/codelens/internal/domain"
	"github.com/ahrav/codelens/internal/ports"
)

var _ ports.CritiqueCache = (*VerdictCache)(nil)

// cacheKeyLen is the number of hex characters kept from the content hash.
// 24 hex chars (96 bits) keeps keys short while making collisions
// practically impossible for this workload.
const cacheKeyLen = 24

// CacheKey derives the memo key for a (code, explanation) pair.
// The key covers both inputs, so entries never need invalidation when
// either side changes: a different pair simply hashes elsewhere.
func CacheKey(code, explanation string) string {
	h := sha256.New()
	h.Write([]byte(code))
	h.Write([]byte("||"))
	h.Write([]byte(explanation))
	return hex.EncodeToString(h.Sum(nil))[:cacheKeyLen]
}

// VerdictCache is an in-memory memo table of critique results keyed by
// content hash. It is safe for concurrent use; concurrent writers of the
// same key store equal values, so last-write-wins is harmless. Entries
// live until Clear is called or the process exits.
type VerdictCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CritiqueResult
}

// NewVerdictCache creates an empty verdict cache. Construct one per
// critic, or share a single instance across critics when process-wide
// memoization is wanted.
func NewVerdictCache() *VerdictCache {
	return &VerdictCache{entries: make(map[string]domain.CritiqueResult)}
}

// Get returns the cached result for a key and whether it was present.
func (c *VerdictCache) Get(key string) (domain.CritiqueResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[key]
	return result, ok
}

// Set stores a result under a key, overwriting any prior entry.
func (c *VerdictCache) Set(key string, result domain.CritiqueResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
}

// Clear removes all entries. Intended for test isolation.
func (c *VerdictCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]domain.CritiqueResult)
}

// Len returns the number of cached entries.
func (c *VerdictCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
