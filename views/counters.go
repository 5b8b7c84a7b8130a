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

import (
	"context"

	"github.com/pkg/errors"

	"github.com/latticedb/lattice/kv"
	"github.com/latticedb/lattice/internal/numeric"
)

// Counters is the "counters" table: NodeKey -> monotone uint64 (spec.md I2).
// Absence of a record is treated as counter 0 by callers; it is never
// written until a node's first successful computation or Set.
type Counters struct {
	store    kv.Store
	sublevel kv.Sublevel
	cache    *typedCache[uint64]
}

func NewCounters(store kv.Store, sublevel kv.Sublevel) *Counters {
	return &Counters{store: store, sublevel: sublevel, cache: newTypedCache[uint64]()}
}

// Get returns the stored counter for key, or 0 if never recorded.
func (c *Counters) Get(ctx context.Context, key []byte) (uint64, error) {
	if v, ok := c.cache.get(string(key)); ok {
		return v, nil
	}
	var counter uint64
	err := c.store.View(ctx, func(tx kv.Tx) error {
		raw, ok, e := tx.Get(c.sublevel, key)
		if e != nil || !ok {
			return e
		}
		v, ok := numeric.ParseUint64(string(raw))
		if !ok {
			return errors.Errorf("views: corrupted counter value %q for %s", raw, key)
		}
		counter = v
		return nil
	})
	if err == nil {
		c.cache.set(string(key), counter)
	}
	return counter, err
}

// Put stages a new counter value in b. Callers (engine package) are
// responsible for only ever increasing the value, per invariant I2.
func (c *Counters) Put(b *Batch, key []byte, counter uint64) {
	b.Put(c.sublevel, key, []byte(numeric.FormatUint64(counter)))
	c.cache.invalidate(string(key))
}

func (c *Counters) Clear(ctx context.Context) error {
	c.cache = newTypedCache[uint64]()
	return c.store.Update(ctx, func(tx kv.RwTx) error {
		return tx.Clear(c.sublevel)
	})
}
