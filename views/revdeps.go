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
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"github.com/latticedb/lattice/kv"
)

// Revdeps is the "revdeps" table: NodeKey -> []NodeKey, the reverse
// dependency index invariant I5 requires to stay in sync with Inputs.
type Revdeps struct {
	store    kv.Store
	sublevel kv.Sublevel
}

func NewRevdeps(store kv.Store, sublevel kv.Sublevel) *Revdeps {
	return &Revdeps{store: store, sublevel: sublevel}
}

func (r *Revdeps) Get(ctx context.Context, key []byte) ([]string, error) {
	var deps []string
	err := r.store.View(ctx, func(tx kv.Tx) error {
		raw, ok, e := tx.Get(r.sublevel, key)
		if e != nil || !ok {
			return e
		}
		if e := json.Unmarshal(raw, &deps); e != nil {
			return errors.Wrapf(e, "views: corrupted revdeps record for %s", key)
		}
		return nil
	})
	return deps, err
}

// Put stages a full replacement of key's revdeps list.
func (r *Revdeps) Put(b *Batch, key []byte, deps []string) error {
	raw, err := json.Marshal(deps)
	if err != nil {
		return errors.Wrapf(err, "views: encode revdeps for %s", key)
	}
	b.Put(r.sublevel, key, raw)
	return nil
}

// AddIfMissing reads deps's current revdeps list and, if dependent is not
// already present, stages an append (spec.md §4.4.2 step e/f "add N to
// each dep's revdeps if missing"). It returns false if no write was needed.
func (r *Revdeps) AddIfMissing(ctx context.Context, b *Batch, dep []byte, dependent string) (bool, error) {
	existing, err := r.Get(ctx, dep)
	if err != nil {
		return false, err
	}
	for _, d := range existing {
		if d == dependent {
			return false, nil
		}
	}
	updated := append(append([]string(nil), existing...), dependent)
	sort.Strings(updated)
	if err := r.Put(b, dep, updated); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Revdeps) Clear(ctx context.Context) error {
	return r.store.Update(ctx, func(tx kv.RwTx) error {
		return tx.Clear(r.sublevel)
	})
}
