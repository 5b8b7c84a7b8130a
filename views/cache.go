// Copyright 2024 The Lattice Authors
// This file is part of Lattice.
//
// Lattice is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Lattice is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Lattice. If not, see <http://www.gnu.org/licenses/>.

package views

import lru "github.com/hashicorp/golang-lru/v2"

// defaultCacheSize bounds the read-through LRU fronting Freshness and
// Counters. These two tables are read on every pull of every dependency
// (spec.md §4.4.2 step 3), so they are the hottest path in the engine;
// Values is not cached here since ComputedValues can be large and are read
// far less often than freshness/counter checks.
const defaultCacheSize = 4096

// typedCache is a small invalidate-on-write wrapper around golang-lru/v2,
// keyed by the NodeKey string. It is purely an optimization: every write
// path also goes through a Batch that is the sole source of truth, so a
// cold or evicted cache entry just costs a store read, never correctness.
type typedCache[V any] struct {
	c *lru.Cache[string, V]
}

func newTypedCache[V any]() *typedCache[V] {
	c, err := lru.New[string, V](defaultCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// defaultCacheSize never is.
		panic(err)
	}
	return &typedCache[V]{c: c}
}

func (t *typedCache[V]) get(key string) (V, bool) {
	return t.c.Get(key)
}

func (t *typedCache[V]) set(key string, v V) {
	t.c.Add(key, v)
}

func (t *typedCache[V]) invalidate(key string) {
	t.c.Remove(key)
}
