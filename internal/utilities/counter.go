package utilities

import (
	"maps"
	"sync"

	"github.com/antonio-alexander/go-employees/internal/data"
)

type hitCounter struct {
	sync.Mutex
	hits   map[string]int
	misses map[string]int
}

// Counter keeps track of cache hits and misses per key (usually the name of
// the operation that consulted the cache).
type Counter interface {
	Read(key string) (hitCount, missCount int)
	ReadAll() *data.CacheCounters
	IncrementHit(key string) (hitCount int)
	IncrementMiss(key string) (missCount int)
	Reset()
}

func NewCounter() Counter {
	c := &hitCounter{}
	c.Reset()
	return c
}

// Read returns -1, -1 for a key that was never incremented
func (c *hitCounter) Read(key string) (int, int) {
	c.Lock()
	defer c.Unlock()

	hits, hitFound := c.hits[key]
	misses, missFound := c.misses[key]
	if !hitFound && !missFound {
		return -1, -1
	}
	return hits, misses
}

func (c *hitCounter) ReadAll() *data.CacheCounters {
	c.Lock()
	defer c.Unlock()

	return &data.CacheCounters{
		Hits:   maps.Clone(c.hits),
		Misses: maps.Clone(c.misses),
	}
}

func (c *hitCounter) Reset() {
	c.Lock()
	defer c.Unlock()

	c.hits, c.misses = make(map[string]int), make(map[string]int)
}

func (c *hitCounter) IncrementHit(key string) int {
	c.Lock()
	defer c.Unlock()

	c.hits[key]++
	if _, found := c.misses[key]; !found {
		c.misses[key] = 0
	}
	return c.hits[key]
}

func (c *hitCounter) IncrementMiss(key string) int {
	c.Lock()
	defer c.Unlock()

	c.misses[key]++
	if _, found := c.hits[key]; !found {
		c.hits[key] = 0
	}
	return c.misses[key]
}
