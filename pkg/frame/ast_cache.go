package frame

import (
	"sync"

	"github.com/stockflow/sdsim/pkg/exprlang"
	"github.com/stockflow/sdsim/pkg/ids"
)

// ASTCache is a thread-safe cache of parsed formula ASTs keyed by the
// owning object's id, the concrete form of the "mutable frame / cached
// parsed AST" side table the design notes call for. Shaped like the
// engine's condition cache, minus LRU eviction: the formula parser pass
// populates each entry at most once per transform run, so nothing needs
// evicting.
type ASTCache struct {
	mu      sync.RWMutex
	entries map[ids.ObjectID]exprlang.Expr
}

// NewASTCache returns an empty cache.
func NewASTCache() *ASTCache {
	return &ASTCache{entries: make(map[ids.ObjectID]exprlang.Expr)}
}

// Get retrieves the cached AST for id, if present.
func (c *ASTCache) Get(id ids.ObjectID) (exprlang.Expr, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// Put stores the parsed AST for id, overwriting any previous entry.
func (c *ASTCache) Put(id ids.ObjectID, expr exprlang.Expr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = expr
}

// Len reports how many ASTs are currently cached.
func (c *ASTCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
