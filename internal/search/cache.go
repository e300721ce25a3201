package search

import "container/list"

// cache is a small LRU memoizing query results. The matcher is bound to
// one immutable corpus, so entries never go stale; a corpus swap means a
// new matcher and a fresh cache.
type cache struct {
	maxSize int
	items   map[string]*list.Element
	lru     *list.List
}

type cacheEntry struct {
	query   string
	results []Result
}

func newCache(maxSize int) *cache {
	return &cache{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// get returns the cached results for a query, nil on miss. The returned
// slice is a copy.
func (c *cache) get(query string) []Result {
	elem, ok := c.items[query]
	if !ok {
		return nil
	}
	c.lru.MoveToFront(elem)
	return copyResults(elem.Value.(*cacheEntry).results)
}

// set stores results for a query, evicting the oldest entry at capacity.
func (c *cache) set(query string, results []Result) {
	if elem, ok := c.items[query]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).results = copyResults(results)
		return
	}

	if c.lru.Len() >= c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).query)
		}
	}

	c.items[query] = c.lru.PushFront(&cacheEntry{
		query:   query,
		results: copyResults(results),
	})
}

func copyResults(results []Result) []Result {
	out := make([]Result, len(results))
	copy(out, results)
	return out
}
