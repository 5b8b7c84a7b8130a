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

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/latticedb/lattice/kv"
	"github.com/latticedb/lattice/value"
)

// Values is the "values" table: NodeKey -> ComputedValue (spec.md §3.1).
// Entries are snappy-compressed at rest; computed values are small JSON
// objects that still benefit from compression when many instances of the
// same schema share structure (e.g. repeated field names across bindings).
type Values struct {
	store    kv.Store
	sublevel kv.Sublevel
}

// NewValues wraps sublevel (already schema-hash-qualified) in store.
func NewValues(store kv.Store, sublevel kv.Sublevel) *Values {
	return &Values{store: store, sublevel: sublevel}
}

// Get returns the stored ComputedValue for key, or ok=false if never set.
func (v *Values) Get(ctx context.Context, key []byte) (val *value.Value, ok bool, err error) {
	err = v.store.View(ctx, func(tx kv.Tx) error {
		raw, found, e := tx.Get(v.sublevel, key)
		if e != nil || !found {
			ok = found
			return e
		}
		decoded, e := snappy.Decode(nil, raw)
		if e != nil {
			return errors.Wrapf(e, "views: decompress value for %s", key)
		}
		parsed, e := value.Parse(decoded)
		if e != nil {
			return errors.Wrapf(e, "views: corrupted value for %s", key)
		}
		val, ok = parsed, true
		return nil
	})
	return val, ok, err
}

// Encode prepares val for inclusion in a Batch (compress + canonicalize).
func (v *Values) Encode(val *value.Value) []byte {
	return snappy.Encode(nil, value.CanonicalValue(val))
}

// Put stages a write to key in b.
func (v *Values) Put(b *Batch, key []byte, val *value.Value) {
	b.Put(v.sublevel, key, v.Encode(val))
}

// Delete stages a removal of key in b.
func (v *Values) Delete(b *Batch, key []byte) {
	b.Delete(v.sublevel, key)
}

// Keys lists every NodeKey with a stored value, for
// Engine.DebugListMaterializedNodes.
func (v *Values) Keys(ctx context.Context) ([]string, error) {
	return collectKeys(ctx, v.store, v.sublevel)
}

// Clear removes every entry (used by tests and by SchemaStorage.Clear).
func (v *Values) Clear(ctx context.Context) error {
	return v.store.Update(ctx, func(tx kv.RwTx) error {
		return tx.Clear(v.sublevel)
	})
}

func collectKeys(ctx context.Context, store kv.Store, sl kv.Sublevel) ([]string, error) {
	var keys []string
	err := store.View(ctx, func(tx kv.Tx) error {
		cur, err := tx.Keys(sl)
		if err != nil {
			return err
		}
		defer cur.Close()
		for {
			k, _, ok := cur.Next()
			if !ok {
				break
			}
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}
