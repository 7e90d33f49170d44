package persona

import (
	"context"
	"errors"
	"sync"
)

// Cache wraps a Loader and loads the personality context at most once per
// process. A failed load is not cached, so the next request retries the
// source. The cached Persona is never mutated after load and is safe for
// unsynchronized concurrent reads.
type Cache struct {
	loader Loader

	mu     sync.RWMutex
	loaded bool
	p      Persona
}

func NewCache(loader Loader) (*Cache, error) {
	if loader == nil {
		return nil, errors.New("persona: loader must not be nil")
	}
	return &Cache{loader: loader}, nil
}

func (c *Cache) Load(ctx context.Context) (Persona, error) {
	c.mu.RLock()
	if c.loaded {
		p := c.p
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.p, nil
	}

	p, err := c.loader.Load(ctx)
	if err != nil {
		return Persona{}, err
	}
	c.p = p
	c.loaded = true
	return p, nil
}
