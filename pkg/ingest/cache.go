package ingest

import lru "github.com/hashicorp/golang-lru/v2"

// orgCache maps organization names to ids. Organizations are never deleted
// so entries never go stale.
type orgCache struct {
	ids *lru.Cache[string, int64]
}

func newOrgCache(size int) *orgCache {
	if size <= 0 {
		size = 1
	}
	cache, _ := lru.New[string, int64](size)
	return &orgCache{ids: cache}
}

func (c *orgCache) Get(name string) (int64, bool) {
	return c.ids.Get(name)
}

func (c *orgCache) Set(name string, id int64) {
	c.ids.Add(name, id)
}

func (c *orgCache) Len() int {
	return c.ids.Len()
}
