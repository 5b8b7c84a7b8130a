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

// Package views implements the L1 layer (spec.md §2): strongly-typed
// wrappers over kv.Sublevel offering get/put/delete/keys/clear/batch, plus
// the five concrete tables (values, freshness, counters, inputs, revdeps)
// a schema storage bundles.
package views

import (
	"context"

	"github.com/latticedb/lattice/kv"
)

// OpKind tags a Batch operation.
type OpKind int

const (
	OpPut OpKind = iota
	OpDelete
)

// Op is one tagged record in a Batch, spanning a single sublevel.
type Op struct {
	Sublevel kv.Sublevel
	Kind     OpKind
	Key      []byte
	Value    []byte
}

// Batch collects operations destined for an atomic kv.RwTx, spanning all
// five views of a schema storage plus (on first use) the root schemas index
// (spec.md §4.3 "batch(operations) contract").
type Batch struct {
	ops []Op
}

// NewBatch returns an empty Batch.
func NewBatch() *Batch { return &Batch{} }

func (b *Batch) Put(sl kv.Sublevel, key, val []byte) {
	b.ops = append(b.ops, Op{Sublevel: sl, Kind: OpPut, Key: key, Value: val})
}

func (b *Batch) Delete(sl kv.Sublevel, key []byte) {
	b.ops = append(b.ops, Op{Sublevel: sl, Kind: OpDelete, Key: key})
}

// Empty reports whether the batch has no operations (used by callers that
// want to skip an Update entirely, e.g. idempotent invalidate of an
// already-outdated node — spec.md P6).
func (b *Batch) Empty() bool { return len(b.ops) == 0 }

// Apply commits every operation through a single kv.RwTx (spec.md I6).
func (b *Batch) Apply(ctx context.Context, store kv.Store) error {
	if b.Empty() {
		return nil
	}
	return store.Update(ctx, func(tx kv.RwTx) error {
		for _, op := range b.ops {
			switch op.Kind {
			case OpPut:
				if err := tx.Put(op.Sublevel, op.Key, op.Value); err != nil {
					return err
				}
			case OpDelete:
				if err := tx.Delete(op.Sublevel, op.Key); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
