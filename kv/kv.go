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

// Package kv is the L0 layer (spec.md §2): an ordered key-value store with
// range scans, atomic batch writes, and hierarchical key namespaces
// ("sublevels"). It deliberately mirrors the shape of erigon-lib/kv's
// Tx/RwTx split so a reader already familiar with that idiom recognizes it
// here, without carrying any of erigon's table-specific code.
package kv

import "context"

// Sublevel names one of the five typed tables a schema storage owns, plus
// the root schemas index. It is combined with a schema hash to form a
// storage-backend-specific namespace (a bbolt bucket name, a memkv map key
// prefix).
type Sublevel string

const (
	SublevelSchemasIndex Sublevel = "schemas"
	SublevelValues       Sublevel = "values"
	SublevelFreshness    Sublevel = "freshness"
	SublevelCounters     Sublevel = "counters"
	SublevelInputs       Sublevel = "inputs"
	SublevelRevdeps      Sublevel = "revdeps"
)

// Cursor iterates a sublevel in lexicographic key order. Implementations
// must support repeated Next calls until ok is false; Close releases any
// backend resources (e.g. a bbolt cursor's parent transaction stays open
// until the enclosing Tx completes, so Close here is a no-op for bbolt but
// required for forward compatibility with backends that need it).
type Cursor interface {
	Next() (key, val []byte, ok bool)
	Close()
}

// Tx is a read-only view over the store, valid only for the lifetime of the
// View callback that produced it.
type Tx interface {
	// Get returns the value stored at key in sublevel, or ok=false if absent.
	Get(sublevel Sublevel, key []byte) (val []byte, ok bool, err error)
	// Keys returns a cursor over every key in sublevel, in lexicographic order.
	Keys(sublevel Sublevel) (Cursor, error)
}

// RwTx is a read-write transaction; every mutation made through it is
// invisible to other transactions until the enclosing Update call returns
// nil, and entirely discarded if it returns an error (spec.md I6).
type RwTx interface {
	Tx
	Put(sublevel Sublevel, key, val []byte) error
	Delete(sublevel Sublevel, key []byte) error
	Clear(sublevel Sublevel) error
}

// Store is the durable backend handle. Construction (kv/boltkv.Open,
// kv/memkv.New) acquires whatever process-exclusive resources the backend
// needs; Close releases them.
type Store interface {
	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(RwTx) error) error
	Close() error
}
