// Package cache memoizes AI summaries within a run, so text syndicated by
// several sources under different links costs a single completion call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

type Cache struct {
	items  map[string]string
	hits   int
	misses int
}

func New() *Cache {
	return &Cache{items: make(map[string]string)}
}

func (c *Cache) Set(key, value string) {
	c.items[key] = value
}

func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.items[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// GenerateKey hashes the parts with a separator that can't occur in UTF-8 text.
func (c *Cache) GenerateKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0xff})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) GetStats() map[string]int {
	return map[string]int{
		"items":  len(c.items),
		"hits":   c.hits,
		"misses": c.misses,
	}
}
