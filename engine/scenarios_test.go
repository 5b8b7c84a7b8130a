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

// Package engine_test implements spec.md §8's ten concrete scenarios
// end-to-end against a real Engine backed by kv/memkv.
package engine_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/engine"
	"github.com/latticedb/lattice/kv/memkv"
	"github.com/latticedb/lattice/schema"
	"github.com/latticedb/lattice/value"
)

func mustValue(t *testing.T, s string) *value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func countOf(t *testing.T, v *value.Value) int {
	t.Helper()
	return v.Raw().GetInt("count")
}

// countingComputor builds a Computor that increments its sole input's count
// field by one, tracking invocations in calls.
func countingComputor(t *testing.T, calls *int32) schema.Computor {
	return func(_ context.Context, inputs []*value.Value, _ *value.Value, _ []*value.Value) (any, error) {
		atomic.AddInt32(calls, 1)
		c := countOf(t, inputs[0])
		return mustValue(t, fmt.Sprintf(`{"count":%d}`, c+1)), nil
	}
}

func neverComputor(t *testing.T) schema.Computor {
	return func(context.Context, []*value.Value, *value.Value, []*value.Value) (any, error) {
		t.Fatal("computor invoked but should never run in this scenario")
		return nil, nil
	}
}

// Scenario 1: linear chain, lazy pull.
func TestScenarioLinearChainLazyPull(t *testing.T) {
	ctx := context.Background()
	var level1Calls, level2Calls, level3Calls int32

	schemas := []schema.Schema{
		{Output: schema.MustParseTemplate("input1"), Computor: neverComputor(t)},
		{Output: schema.MustParseTemplate("level1"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("input1")}, Computor: countingComputor(t, &level1Calls)},
		{Output: schema.MustParseTemplate("level2"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("level1")}, Computor: countingComputor(t, &level2Calls)},
		{Output: schema.MustParseTemplate("level3"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("level2")}, Computor: countingComputor(t, &level3Calls)},
	}

	e, err := engine.New(ctx, memkv.New(), schemas)
	require.NoError(t, err)

	require.NoError(t, e.Set(ctx, "input1", mustValue(t, `{"count":1}`)))

	got, err := e.Pull(ctx, "level2")
	require.NoError(t, err)
	require.Equal(t, 3, countOf(t, got))
	require.EqualValues(t, 1, atomic.LoadInt32(&level1Calls))
	require.EqualValues(t, 1, atomic.LoadInt32(&level2Calls))
	require.EqualValues(t, 0, atomic.LoadInt32(&level3Calls))
}

// Scenario 2: cached return on clean state.
func TestScenarioCachedReturnOnCleanState(t *testing.T) {
	ctx := context.Background()
	var calls int32

	schemas := []schema.Schema{
		{Output: schema.MustParseTemplate("input1"), Computor: neverComputor(t)},
		{Output: schema.MustParseTemplate("output1"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("input1")}, Computor: countingComputor(t, &calls)},
	}
	e, err := engine.New(ctx, memkv.New(), schemas)
	require.NoError(t, err)
	require.NoError(t, e.Set(ctx, "input1", mustValue(t, `{"count":1}`)))

	first, err := e.Pull(ctx, "output1")
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	second, err := e.Pull(ctx, "output1")
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
	require.True(t, value.DeepEqual(first, second))
}

// Scenario 3: Unchanged propagates up-to-date without re-running downstream.
func TestScenarioUnchangedPropagatesUpToDate(t *testing.T) {
	ctx := context.Background()
	var bCalls, cCalls int32

	bComputor := func(_ context.Context, inputs []*value.Value, previous *value.Value, _ []*value.Value) (any, error) {
		atomic.AddInt32(&bCalls, 1)
		if previous == nil {
			// First materialization: nothing to report as unchanged against.
			return mustValue(t, fmt.Sprintf(`{"count":%d}`, countOf(t, inputs[0]))), nil
		}
		return value.Unchanged, nil
	}
	cComputor := func(_ context.Context, inputs []*value.Value, _ *value.Value, _ []*value.Value) (any, error) {
		atomic.AddInt32(&cCalls, 1)
		return mustValue(t, fmt.Sprintf(`{"count":%d}`, countOf(t, inputs[0])+1)), nil
	}

	schemas := []schema.Schema{
		{Output: schema.MustParseTemplate("a"), Computor: neverComputor(t)},
		{Output: schema.MustParseTemplate("b"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("a")}, Computor: bComputor},
		{Output: schema.MustParseTemplate("c"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("b")}, Computor: cComputor},
	}
	e, err := engine.New(ctx, memkv.New(), schemas)
	require.NoError(t, err)

	require.NoError(t, e.Set(ctx, "a", mustValue(t, `{"count":1}`)))
	// Prime b and c once so there is a previous value for b's Unchanged
	// return to refer to.
	_, err = e.Pull(ctx, "c")
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&bCalls))
	require.EqualValues(t, 1, atomic.LoadInt32(&cCalls))

	require.NoError(t, e.Set(ctx, "a", mustValue(t, `{"count":2}`)))
	result, err := e.Pull(ctx, "c")
	require.NoError(t, err)

	require.EqualValues(t, 2, atomic.LoadInt32(&bCalls))
	require.EqualValues(t, 1, atomic.LoadInt32(&cCalls), "c's computor must not re-run when b's counter held steady")
	require.Equal(t, 2, countOf(t, result))

	for _, key := range []string{"a", "b", "c"} {
		state, err := e.DebugGetFreshness(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "up-to-date", state)
	}
}

// Scenario 4: diamond with one Unchanged path still recomputes the join.
func TestScenarioDiamondWithOneUnchangedPath(t *testing.T) {
	ctx := context.Background()
	var bCalls, cCalls, dCalls int32

	bComputor := func(_ context.Context, inputs []*value.Value, _ *value.Value, _ []*value.Value) (any, error) {
		atomic.AddInt32(&bCalls, 1)
		return mustValue(t, fmt.Sprintf(`{"count":%d}`, countOf(t, inputs[0])+1)), nil
	}
	cComputor := func(_ context.Context, inputs []*value.Value, previous *value.Value, _ []*value.Value) (any, error) {
		atomic.AddInt32(&cCalls, 1)
		if previous == nil {
			return mustValue(t, fmt.Sprintf(`{"count":%d}`, countOf(t, inputs[0]))), nil
		}
		return value.Unchanged, nil
	}
	dComputor := func(_ context.Context, inputs []*value.Value, _ *value.Value, _ []*value.Value) (any, error) {
		atomic.AddInt32(&dCalls, 1)
		return mustValue(t, fmt.Sprintf(`{"count":%d}`, countOf(t, inputs[0])+countOf(t, inputs[1]))), nil
	}

	schemas := []schema.Schema{
		{Output: schema.MustParseTemplate("a"), Computor: neverComputor(t)},
		{Output: schema.MustParseTemplate("b"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("a")}, Computor: bComputor},
		{Output: schema.MustParseTemplate("c"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("a")}, Computor: cComputor},
		{Output: schema.MustParseTemplate("d"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("b"), schema.MustParseTemplate("c")}, Computor: dComputor},
	}
	e, err := engine.New(ctx, memkv.New(), schemas)
	require.NoError(t, err)

	require.NoError(t, e.Set(ctx, "a", mustValue(t, `{"count":1}`)))
	_, err = e.Pull(ctx, "d")
	require.NoError(t, err)
	require.EqualValues(t, 1, dCalls)

	require.NoError(t, e.Set(ctx, "a", mustValue(t, `{"count":5}`)))
	result, err := e.Pull(ctx, "d")
	require.NoError(t, err)

	require.EqualValues(t, 2, atomic.LoadInt32(&cCalls))
	require.EqualValues(t, 2, atomic.LoadInt32(&dCalls), "d must rerun since b's counter changed even though c's did not")
	require.Equal(t, 7, countOf(t, result))

	for _, key := range []string{"a", "b", "c", "d"} {
		state, err := e.DebugGetFreshness(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "up-to-date", state)
	}
}

// Scenario 5: cycle rejection.
func TestScenarioCycleRejection(t *testing.T) {
	noop := func(context.Context, []*value.Value, *value.Value, []*value.Value) (any, error) {
		return value.Unchanged, nil
	}
	_, err := engine.New(context.Background(), memkv.New(), []schema.Schema{
		{Output: schema.MustParseTemplate("n1"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("n2")}, Computor: noop},
		{Output: schema.MustParseTemplate("n2"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("n1")}, Computor: noop},
	})
	require.Error(t, err)
	var cycleErr *schema.CycleError
	require.ErrorAs(t, err, &cycleErr)
}

// Scenario 6: overlap rejection.
func TestScenarioOverlapRejection(t *testing.T) {
	noop := func(context.Context, []*value.Value, *value.Value, []*value.Value) (any, error) {
		return value.Unchanged, nil
	}
	_, err := engine.New(context.Background(), memkv.New(), []schema.Schema{
		{Output: schema.MustParseTemplate("node(x)"), Computor: noop},
		{Output: schema.MustParseTemplate("node(y)"), Computor: noop},
	})
	require.Error(t, err)
	var overlapErr *schema.OverlapError
	require.ErrorAs(t, err, &overlapErr)
}

// Scenario 7: canonicalization.
func TestScenarioCanonicalization(t *testing.T) {
	ctx := context.Background()
	var calls int32
	derivedComputor := func(_ context.Context, inputs []*value.Value, _ *value.Value, _ []*value.Value) (any, error) {
		atomic.AddInt32(&calls, 1)
		return inputs[0], nil
	}

	schemas := []schema.Schema{
		{Output: schema.MustParseTemplate("base"), Computor: neverComputor(t)},
		{Output: schema.MustParseTemplate(`derived(x)`), Inputs: []schema.NameTemplate{schema.MustParseTemplate("base")}, Computor: derivedComputor},
	}
	e, err := engine.New(ctx, memkv.New(), schemas)
	require.NoError(t, err)

	require.NoError(t, e.Set(ctx, "base", mustValue(t, `{"v":5}`)))

	_, err = e.Pull(ctx, `derived ( "data"  )`)
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))

	materialized, err := e.DebugListMaterializedNodes(ctx)
	require.NoError(t, err)
	require.Contains(t, materialized, `derived("data")`)

	_, err = e.Pull(ctx, `derived("data")`)
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls), "pulling the canonical form a second time must not recompute")
}

// Scenario 8: distinct bindings produce distinct instances.
func TestScenarioBindingsProduceDistinctInstances(t *testing.T) {
	ctx := context.Background()
	var calls int32
	derivedComputor := func(_ context.Context, _ []*value.Value, _ *value.Value, bindings []*value.Value) (any, error) {
		atomic.AddInt32(&calls, 1)
		return bindings[0], nil
	}

	schemas := []schema.Schema{
		{Output: schema.MustParseTemplate("source"), Computor: neverComputor(t)},
		{Output: schema.MustParseTemplate("derived(x)"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("source")}, Computor: derivedComputor},
	}
	e, err := engine.New(ctx, memkv.New(), schemas)
	require.NoError(t, err)
	require.NoError(t, e.Set(ctx, "source", mustValue(t, `{"seed":true}`)))

	first := mustValue(t, `{"events":["first"]}`)
	second := mustValue(t, `{"events":["second"]}`)

	_, err = e.Pull(ctx, "derived(x)", first)
	require.NoError(t, err)
	_, err = e.Pull(ctx, "derived(x)", second)
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))

	_, err = e.Pull(ctx, "derived(x)", mustValue(t, `{"events":["first"]}`))
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls), "re-pulling with an equal binding must not recompute")
}

// Scenario 9: schema isolation across restart.
func TestScenarioSchemaIsolationAcrossRestart(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()

	neverRun := func(context.Context, []*value.Value, *value.Value, []*value.Value) (any, error) {
		t.Fatal("x is always driven by Set and must never be pulled")
		return nil, nil
	}
	echo := func(_ context.Context, inputs []*value.Value, _ *value.Value, _ []*value.Value) (any, error) {
		return inputs[0], nil
	}
	e1, err := engine.New(ctx, store, []schema.Schema{
		{Output: schema.MustParseTemplate("x"), Computor: neverRun},
		{Output: schema.MustParseTemplate("y"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("x")}, Computor: echo},
	})
	require.NoError(t, err)

	e2, err := engine.New(ctx, store, []schema.Schema{
		{Output: schema.MustParseTemplate("x"), Computor: neverRun},
	})
	require.NoError(t, err)
	require.NotEqual(t, e1.SchemaHash(), e2.SchemaHash())

	require.NoError(t, e1.Set(ctx, "x", mustValue(t, `{"v":1}`)))
	_, err = e1.Pull(ctx, "y")
	require.NoError(t, err)

	require.NoError(t, e1.Invalidate(ctx, "x"))

	state1, err := e1.DebugGetFreshness(ctx, "y")
	require.NoError(t, err)
	require.Equal(t, "potentially-outdated", state1)

	state2, err := e2.DebugGetFreshness(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, "missing", state2, "e2's namespace must be untouched by e1's invalidate")

	// Simulate close/reopen: fresh handles over the same store keep the
	// two namespaces apart.
	e1Reopened, err := engine.New(ctx, store, []schema.Schema{
		{Output: schema.MustParseTemplate("x"), Computor: neverRun},
		{Output: schema.MustParseTemplate("y"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("x")}, Computor: echo},
	})
	require.NoError(t, err)
	e2Reopened, err := engine.New(ctx, store, []schema.Schema{
		{Output: schema.MustParseTemplate("x"), Computor: neverRun},
	})
	require.NoError(t, err)

	state1, err = e1Reopened.DebugGetFreshness(ctx, "y")
	require.NoError(t, err)
	require.Equal(t, "potentially-outdated", state1)

	state2, err = e2Reopened.DebugGetFreshness(ctx, "x")
	require.NoError(t, err)
	require.Equal(t, "missing", state2, "e2's namespace must stay untouched after reopening")
}

// Scenario 10: persistent revdeps after restart.
func TestScenarioPersistentRevdepsAfterRestart(t *testing.T) {
	ctx := context.Background()
	store := memkv.New()

	identity := func(_ context.Context, inputs []*value.Value, _ *value.Value, _ []*value.Value) (any, error) {
		return inputs[0], nil
	}
	schemas := []schema.Schema{
		{Output: schema.MustParseTemplate("a"), Computor: neverComputor(t)},
		{Output: schema.MustParseTemplate("b"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("a")}, Computor: identity},
		{Output: schema.MustParseTemplate("c"), Inputs: []schema.NameTemplate{schema.MustParseTemplate("b")}, Computor: identity},
	}

	e, err := engine.New(ctx, store, schemas)
	require.NoError(t, err)
	require.NoError(t, e.Set(ctx, "a", mustValue(t, `{"v":1}`)))
	_, err = e.Pull(ctx, "c")
	require.NoError(t, err)

	// Simulate close/reopen: a fresh Engine handle over the same store.
	reopened, err := engine.New(ctx, store, schemas)
	require.NoError(t, err)

	require.NoError(t, reopened.Set(ctx, "a", mustValue(t, `{"v":2}`)))

	state, err := reopened.DebugGetFreshness(ctx, "c")
	require.NoError(t, err)
	require.Equal(t, "potentially-outdated", state, "cascade must still reach c through revdeps recorded before the restart")
}
