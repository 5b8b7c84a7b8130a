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

// Package memkv is an in-process kv.Store backed by plain Go maps whose keys
// are sorted on each Keys scan, used by unit tests and the
// pgregory.net/rapid property-model (spec.md §8) where a durable backend
// would only add I/O latency without adding test coverage. No ordered
// in-memory map library appears anywhere in the example pack (see
// DESIGN.md); a small map plus stdlib sort is the justified exception here.
package memkv

import (
	"context"
	"sort"
	"sync"

	"github.com/latticedb/lattice/kv"
)

type table map[string][]byte

// Store is a single-process, non-durable kv.Store. It exists purely for
// tests; production callers use kv/boltkv.
type Store struct {
	mu     sync.Mutex
	tables map[kv.Sublevel]table
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{tables: make(map[kv.Sublevel]table)}
}

func (s *Store) View(_ context.Context, fn func(kv.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&tx{s: s})
}

func (s *Store) Update(_ context.Context, fn func(kv.RwTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	rw := &rwTx{tx: tx{s: s}}
	if err := fn(rw); err != nil {
		// Roll back: nothing committed (spec.md I6).
		s.tables = snapshot
		return err
	}
	return nil
}

func (s *Store) clone() map[kv.Sublevel]table {
	out := make(map[kv.Sublevel]table, len(s.tables))
	for sl, t := range s.tables {
		nt := make(table, len(t))
		for k, v := range t {
			cp := make([]byte, len(v))
			copy(cp, v)
			nt[k] = cp
		}
		out[sl] = nt
	}
	return out
}

func (s *Store) Close() error { return nil }

type tx struct {
	s *Store
}

func (t *tx) Get(sublevel kv.Sublevel, key []byte) ([]byte, bool, error) {
	tbl, ok := t.s.tables[sublevel]
	if !ok {
		return nil, false, nil
	}
	v, ok := tbl[string(key)]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (t *tx) Keys(sublevel kv.Sublevel) (kv.Cursor, error) {
	tbl := t.s.tables[sublevel]
	keys := make([]string, 0, len(tbl))
	for k := range tbl {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &cursor{tbl: tbl, keys: keys}, nil
}

type cursor struct {
	tbl  table
	keys []string
	pos  int
}

func (c *cursor) Next() ([]byte, []byte, bool) {
	if c.pos >= len(c.keys) {
		return nil, nil, false
	}
	k := c.keys[c.pos]
	c.pos++
	return []byte(k), c.tbl[k], true
}

func (c *cursor) Close() {}

type rwTx struct {
	tx
}

func (t *rwTx) Put(sublevel kv.Sublevel, key, val []byte) error {
	tbl, ok := t.s.tables[sublevel]
	if !ok {
		tbl = make(table)
		t.s.tables[sublevel] = tbl
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	tbl[string(key)] = cp
	return nil
}

func (t *rwTx) Delete(sublevel kv.Sublevel, key []byte) error {
	tbl, ok := t.s.tables[sublevel]
	if !ok {
		return nil
	}
	delete(tbl, string(key))
	return nil
}

func (t *rwTx) Clear(sublevel kv.Sublevel) error {
	delete(t.s.tables, sublevel)
	return nil
}
