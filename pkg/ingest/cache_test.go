package ingest

import (
	"testing"

	"github.com/matryer/is"
)

func TestOrgCache(t *testing.T) {
	is := is.New(t)
	c := newOrgCache(0)
	c.Set("a", 1)
	c.Set("b", 2) // evicts a
	_, ok := c.Get("a")
	is.True(!ok)
	id, ok := c.Get("b")
	is.True(ok)
	is.Equal(id, int64(2))
	is.Equal(c.Len(), 1)
}
