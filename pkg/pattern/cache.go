// Copyright 2026 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package pattern

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kraklabs/sgrep/internal/metrics"
	"github.com/kraklabs/sgrep/pkg/lang"
)

// Cache is a bounded, LRU pattern cache shared across requests. A single
// mutex guards the underlying LRU; the cache sits in front of a parser that
// is orders of magnitude more expensive, so contention here is not a
// practical concern.
type Cache struct {
	mu    sync.Mutex
	inner *lru.Cache[CacheKey, *Pattern]
}

// NewCache builds a pattern cache with the given capacity. A non-positive
// capacity falls back to 256.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	inner, err := lru.New[CacheKey, *Pattern](capacity)
	if err != nil {
		// Only returns an error for a non-positive size, already guarded above.
		panic(err)
	}
	return &Cache{inner: inner}
}

// CompileCached compiles patternText for l under opts, returning a cached
// Pattern on a hit. On a concurrent miss for the same key, both callers
// compile independently and the last Add wins; both returned Patterns are
// valid.
func (c *Cache) CompileCached(l *lang.Language, patternText string, opts CompileOptions) (*Pattern, error) {
	key := CacheKey{
		Lang:       l.Name,
		Pattern:    patternText,
		Strictness: opts.Strictness,
		Selector:   opts.Selector,
		Context:    opts.Context,
	}

	c.mu.Lock()
	if p, ok := c.inner.Get(key); ok {
		c.mu.Unlock()
		metrics.RecordCacheHit()
		return p, nil
	}
	c.mu.Unlock()
	metrics.RecordCacheMiss()

	p, err := Compile(l, patternText, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.inner.Add(key, p)
	c.mu.Unlock()

	return p, nil
}

// Len reports the number of patterns currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inner.Len()
}

// Purge evicts every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Purge()
}
