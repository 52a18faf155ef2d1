// Package caching owns the process-wide in-memory cache that backs the
// per-browser workspaces and the login rate limiter.
package caching

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	memoryCache *cache.Cache
}

func NewCache() *Cache {
	return &Cache{}
}

// Init creates the underlying store. Entries default to ttl and expired ones
// are swept every cleanup interval.
func (s *Cache) Init(ttl, cleanup time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %v", ttl)
	}
	s.memoryCache = cache.New(ttl, cleanup)
	return nil
}

func (s *Cache) Flush() error {
	if s.memoryCache != nil {
		s.memoryCache.Flush()
	}

	return nil
}

func (s *Cache) Memory() *cache.Cache {
	return s.memoryCache
}
