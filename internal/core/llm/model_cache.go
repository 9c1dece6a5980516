package llm

import (
	"context"
	"sync/atomic"

	"github.com/markdave123-py/LegalScan/internal/core"
)

// MemoryCache holds the active model in-process. Writers race last-wins;
// Invalidate only clears the slot if it still holds the failing model.
type MemoryCache struct {
	active atomic.Pointer[string]
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

func (c *MemoryCache) Get(context.Context) (string, bool) {
	p := c.active.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

func (c *MemoryCache) Set(_ context.Context, model string) {
	c.active.Store(&model)
}

func (c *MemoryCache) Invalidate(_ context.Context, model string) {
	cur := c.active.Load()
	if cur != nil && *cur == model {
		c.active.CompareAndSwap(cur, nil)
	}
}

var _ core.ModelCache = (*MemoryCache)(nil)
