package calc

import (
	"container/list"
	"sync"

	"github.com/midbel/xlcalc/formula"
)

// exprCache keeps the most recently used parsed formulas. Trees are stored
// with unbound references so that they can be shared by every cell having
// the same formula text.
type exprCache struct {
	mu    sync.Mutex
	size  int
	items map[string]*list.Element
	order *list.List
}

type cacheEntry struct {
	text string
	expr formula.Expr
}

func newCache(size int) *exprCache {
	return &exprCache{
		size:  size,
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

func (c *exprCache) Get(text string) (formula.Expr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[text]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).expr, true
}

func (c *exprCache) Put(text string, expr formula.Expr) {
	if c.size <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[text]; ok {
		el.Value.(*cacheEntry).expr = expr
		c.order.MoveToFront(el)
		return
	}
	c.items[text] = c.order.PushFront(&cacheEntry{text: text, expr: expr})
	for c.order.Len() > c.size {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.items, last.Value.(*cacheEntry).text)
	}
}

func (c *exprCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
