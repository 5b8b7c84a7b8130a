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

// Package storage implements the L2 layer (spec.md §2): a per-schema-hash
// container bundling the five typed views and an atomic batch that spans
// them, plus the root "schemas" index recording which hashes have ever been
// touched so they persist discovery across restarts (spec.md §4.3, §6.2).
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/latticedb/lattice/kv"
	"github.com/latticedb/lattice/views"
)

// SchemaStorage bundles the Values/Freshness/Counters/Inputs/Revdeps views
// for one schema hash. It is shared by reference among all in-flight
// evaluation calls for the lifetime of the owning engine handle (spec.md
// §3.3).
type SchemaStorage struct {
	Hash string

	Values    *views.Values
	Freshness *views.Freshness
	Counters  *views.Counters
	Inputs    *views.Inputs
	Revdeps   *views.Revdeps

	store    kv.Store
	registry *Registry
}

func qualify(hash string, sl kv.Sublevel) kv.Sublevel {
	return kv.Sublevel(fmt.Sprintf("%s/%s", hash, sl))
}

func newSchemaStorage(store kv.Store, registry *Registry, hash string) *SchemaStorage {
	return &SchemaStorage{
		Hash:      hash,
		Values:    views.NewValues(store, qualify(hash, kv.SublevelValues)),
		Freshness: views.NewFreshness(store, qualify(hash, kv.SublevelFreshness)),
		Counters:  views.NewCounters(store, qualify(hash, kv.SublevelCounters)),
		Inputs:    views.NewInputs(store, qualify(hash, kv.SublevelInputs)),
		Revdeps:   views.NewRevdeps(store, qualify(hash, kv.SublevelRevdeps)),
		store:     store,
		registry:  registry,
	}
}

// Batch begins a new cross-view batch. Call Apply to commit it atomically;
// on first commit under a previously-unknown hash, the schema's presence is
// recorded in the root schemas index in the same underlying transaction
// (spec.md §4.3 "a crash between schema creation and first useful write
// cannot leave a dangling namespace").
func (s *SchemaStorage) Batch() *views.Batch {
	return views.NewBatch()
}

// Apply commits b atomically, registering s.Hash in the root index first if
// this is the first write ever made under it.
func (s *SchemaStorage) Apply(ctx context.Context, b *views.Batch) error {
	if b.Empty() {
		return nil
	}
	newlyRegistered := s.registry.stageRegistration(s.Hash, b)
	if err := b.Apply(ctx, s.store); err != nil {
		if newlyRegistered {
			s.registry.unstageRegistration(s.Hash)
		}
		return err
	}
	return nil
}

// Clear removes every key in every view of this schema storage. Used by
// tests and administrative tooling; the engine itself never calls it.
func (s *SchemaStorage) Clear(ctx context.Context) error {
	if err := s.Values.Clear(ctx); err != nil {
		return err
	}
	if err := s.Freshness.Clear(ctx); err != nil {
		return err
	}
	if err := s.Counters.Clear(ctx); err != nil {
		return err
	}
	if err := s.Inputs.Clear(ctx); err != nil {
		return err
	}
	return s.Revdeps.Clear(ctx)
}

// Registry owns the root "/schemas/<hash>" presence index (spec.md §6.2) and
// lazily creates SchemaStorage instances on first touch.
type Registry struct {
	store kv.Store

	mu       sync.Mutex
	storages map[string]*SchemaStorage
	known    map[string]bool
}

// NewRegistry loads the set of previously-registered schema hashes from
// store so SchemaStorage lookups for them succeed without a fresh Apply
// (spec.md "recorded in a root schemas index so schemas persist across
// restarts").
func NewRegistry(ctx context.Context, store kv.Store) (*Registry, error) {
	r := &Registry{store: store, storages: make(map[string]*SchemaStorage), known: make(map[string]bool)}
	err := store.View(ctx, func(tx kv.Tx) error {
		cur, err := tx.Keys(kv.SublevelSchemasIndex)
		if err != nil {
			return err
		}
		defer cur.Close()
		for {
			k, _, ok := cur.Next()
			if !ok {
				break
			}
			r.known[string(k)] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns (creating in memory, if necessary) the SchemaStorage for hash.
// It does not by itself make hash durable; durability happens on the first
// Apply of a non-empty batch through it (see stageRegistration).
func (r *Registry) Get(hash string) *SchemaStorage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.storages[hash]; ok {
		return s
	}
	s := newSchemaStorage(r.store, r, hash)
	r.storages[hash] = s
	return s
}

// KnownHashes lists every schema hash the root index has ever recorded,
// across restarts.
func (r *Registry) KnownHashes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.known))
	for h := range r.known {
		out = append(out, h)
	}
	return out
}

// stageRegistration adds the schemas-index write to b if hash has not
// already been recorded, optimistically marking it known so concurrent
// callers in the same batch don't double-stage it. It reports whether it
// staged a new registration, so a failed Apply can roll the flag back.
func (r *Registry) stageRegistration(hash string, b *views.Batch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known[hash] {
		return false
	}
	b.Put(kv.SublevelSchemasIndex, []byte(hash), []byte("1"))
	r.known[hash] = true
	return true
}

func (r *Registry) unstageRegistration(hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.known, hash)
}
