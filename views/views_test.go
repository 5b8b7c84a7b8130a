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

package views_test

import (
	"context"
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/kv"
	"github.com/latticedb/lattice/kv/memkv"
	"github.com/latticedb/lattice/value"
	"github.com/latticedb/lattice/views"
)

func TestValuesRoundTripsThroughCompression(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	vs := views.NewValues(store, kv.SublevelValues)

	v, err := value.Parse([]byte(`{"count":3}`))
	require.NoError(t, err)

	b := views.NewBatch()
	vs.Put(b, []byte("level1"), v)
	require.NoError(t, b.Apply(ctx, store))

	got, ok, err := vs.Get(ctx, []byte("level1"))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, value.DeepEqual(v, got))
}

func TestValuesGetAbsentIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	vs := views.NewValues(store, kv.SublevelValues)

	_, ok, err := vs.Get(ctx, []byte("nope"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFreshnessDefaultsToMissing(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	fr := views.NewFreshness(store, kv.SublevelFreshness)

	state, err := fr.Get(ctx, []byte("n"))
	require.NoError(t, err)
	require.Equal(t, views.StateMissing, state)
}

func TestFreshnessPutThenGetUsesCache(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	fr := views.NewFreshness(store, kv.SublevelFreshness)

	b := views.NewBatch()
	fr.Put(b, []byte("n"), views.StateUpToDate)
	require.NoError(t, b.Apply(ctx, store))

	state, err := fr.Get(ctx, []byte("n"))
	require.NoError(t, err)
	require.Equal(t, views.StateUpToDate, state)
}

func TestCountersDefaultToZero(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	cs := views.NewCounters(store, kv.SublevelCounters)

	c, err := cs.Get(ctx, []byte("n"))
	require.NoError(t, err)
	require.Equal(t, uint64(0), c)
}

func TestCountersMonotoneAcrossPuts(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	cs := views.NewCounters(store, kv.SublevelCounters)

	for i := uint64(1); i <= 3; i++ {
		b := views.NewBatch()
		cs.Put(b, []byte("n"), i)
		require.NoError(t, b.Apply(ctx, store))

		got, err := cs.Get(ctx, []byte("n"))
		require.NoError(t, err)
		require.Equal(t, i, got)
	}
}

func TestRevdepsAddIfMissingIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	rd := views.NewRevdeps(store, kv.SublevelRevdeps)

	b1 := views.NewBatch()
	added, err := rd.AddIfMissing(ctx, b1, []byte("dep"), "dependent")
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, b1.Apply(ctx, store))

	b2 := views.NewBatch()
	added, err = rd.AddIfMissing(ctx, b2, []byte("dep"), "dependent")
	require.NoError(t, err)
	require.False(t, added)
	require.True(t, b2.Empty())

	deps, err := rd.Get(ctx, []byte("dep"))
	require.NoError(t, err)
	require.Equal(t, []string{"dependent"}, deps)
}

func TestInputsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()
	in := views.NewInputs(store, kv.SublevelInputs)

	rec := &views.InputsRecord{Inputs: []string{"a", "b"}, InputCounters: []uint64{1, 2}}
	b := views.NewBatch()
	require.NoError(t, in.Put(b, []byte("n"), rec))
	require.NoError(t, b.Apply(ctx, store))

	got, ok, err := in.Get(ctx, []byte("n"))
	require.NoError(t, err)
	require.True(t, ok)
	if diff := deep.Equal(rec, got); diff != nil {
		t.Errorf("InputsRecord round trip mismatch: %v", diff)
	}
}

func TestBatchAppliesAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()

	b := views.NewBatch()
	require.True(t, b.Empty())
	b.Put(kv.SublevelValues, []byte("a"), []byte("1"))
	b.Put(kv.SublevelFreshness, []byte("a"), []byte("up-to-date"))
	require.False(t, b.Empty())
	require.NoError(t, b.Apply(ctx, store))

	require.NoError(t, store.View(ctx, func(tx kv.Tx) error {
		_, ok, err := tx.Get(kv.SublevelValues, []byte("a"))
		require.NoError(t, err)
		require.True(t, ok)
		_, ok, err = tx.Get(kv.SublevelFreshness, []byte("a"))
		require.NoError(t, err)
		require.True(t, ok)
		return nil
	}))
}
