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

	"github.com/pkg/errors"

	"github.com/latticedb/lattice/kv"
)

// InputsRecord is the exact dependency edge set observed during a node's
// last successful computation (spec.md §3.1): the dependency NodeKeys in
// declaration order, paired with the counter each held at that time.
type InputsRecord struct {
	Inputs        []string `json:"inputs"`
	InputCounters []uint64 `json:"inputCounters"`
}

// Inputs is the "inputs" table: NodeKey -> InputsRecord. This is a small,
// infrequently-read bookkeeping record (consulted once per validate pass,
// not once per dependency), so it is not cache-fronted like Freshness and
// Counters; it is encoded with encoding/json rather than the canonical
// fastjson path because it is an internal record shape, not a user-supplied
// ComputedValue that must round-trip through NodeKey canonicalization.
type Inputs struct {
	store    kv.Store
	sublevel kv.Sublevel
}

func NewInputs(store kv.Store, sublevel kv.Sublevel) *Inputs {
	return &Inputs{store: store, sublevel: sublevel}
}

func (i *Inputs) Get(ctx context.Context, key []byte) (*InputsRecord, bool, error) {
	var rec *InputsRecord
	var found bool
	err := i.store.View(ctx, func(tx kv.Tx) error {
		raw, ok, e := tx.Get(i.sublevel, key)
		if e != nil || !ok {
			found = ok
			return e
		}
		var r InputsRecord
		if e := json.Unmarshal(raw, &r); e != nil {
			return errors.Wrapf(e, "views: corrupted inputs record for %s", key)
		}
		rec, found = &r, true
		return nil
	})
	return rec, found, err
}

func (i *Inputs) Put(b *Batch, key []byte, rec *InputsRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "views: encode inputs record for %s", key)
	}
	b.Put(i.sublevel, key, raw)
	return nil
}

func (i *Inputs) Delete(b *Batch, key []byte) {
	b.Delete(i.sublevel, key)
}

func (i *Inputs) Clear(ctx context.Context) error {
	return i.store.Update(ctx, func(tx kv.RwTx) error {
		return tx.Clear(i.sublevel)
	})
}
