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
)

// State is one of the two freshness states spec.md §3.1 allows; absence of
// a record means "never materialized" and is represented as StateMissing,
// which is never itself written to storage.
type State int

const (
	StateMissing State = iota
	StateUpToDate
	StatePotentiallyOutdated
)

func (s State) String() string {
	switch s {
	case StateUpToDate:
		return "up-to-date"
	case StatePotentiallyOutdated:
		return "potentially-outdated"
	default:
		return "missing"
	}
}

var (
	upToDateBytes          = []byte("up-to-date")
	potentiallyOutdatedBytes = []byte("potentially-outdated")
)

// Freshness is the "freshness" table: NodeKey -> State.
type Freshness struct {
	store    kv.Store
	sublevel kv.Sublevel
	cache    *typedCache[State]
}

func NewFreshness(store kv.Store, sublevel kv.Sublevel) *Freshness {
	return &Freshness{store: store, sublevel: sublevel, cache: newTypedCache[State]()}
}

func (f *Freshness) Get(ctx context.Context, key []byte) (State, error) {
	if s, ok := f.cache.get(string(key)); ok {
		return s, nil
	}
	var state = StateMissing
	err := f.store.View(ctx, func(tx kv.Tx) error {
		raw, ok, e := tx.Get(f.sublevel, key)
		if e != nil || !ok {
			return e
		}
		switch string(raw) {
		case string(upToDateBytes):
			state = StateUpToDate
		case string(potentiallyOutdatedBytes):
			state = StatePotentiallyOutdated
		default:
			return errors.Errorf("views: corrupted freshness value %q for %s", raw, key)
		}
		return nil
	})
	if err == nil {
		f.cache.set(string(key), state)
	}
	return state, err
}

// Put stages a freshness transition in b. The cache is invalidated
// immediately since the write is not guaranteed committed until b.Apply
// returns nil; callers must not read through the cache again until then.
func (f *Freshness) Put(b *Batch, key []byte, state State) {
	var raw []byte
	switch state {
	case StateUpToDate:
		raw = upToDateBytes
	case StatePotentiallyOutdated:
		raw = potentiallyOutdatedBytes
	default:
		panic("views: StateMissing is not a storable freshness value")
	}
	b.Put(f.sublevel, key, raw)
	f.cache.invalidate(string(key))
}

// Keys lists every NodeKey with a recorded freshness state.
func (f *Freshness) Keys(ctx context.Context) ([]string, error) {
	return collectKeys(ctx, f.store, f.sublevel)
}

func (f *Freshness) Clear(ctx context.Context) error {
	f.cache = newTypedCache[State]()
	return f.store.Update(ctx, func(tx kv.RwTx) error {
		return tx.Clear(f.sublevel)
	})
}
