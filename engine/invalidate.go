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

package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	latticeschema "github.com/latticedb/lattice/schema"
	"github.com/latticedb/lattice/value"
	"github.com/latticedb/lattice/views"
)

// Set implements the public set operation (spec.md §4.4.1, §4.4.3): write
// value, bump the counter if it changed (or this is the first set), mark
// the node up-to-date, and cascade potentially-outdated to every
// transitive dependent. set(N, v); set(N, v) is idempotent (spec.md P5):
// the second call performs no counter increment and no cascade.
func (e *Engine) Set(ctx context.Context, nodeKey string, val *value.Value) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	start := time.Now()
	logger := e.logger.With(zap.String("trace", newTraceID()), zap.String("op", "set"), zap.String("nodeKey", nodeKey))

	if !val.IsObject() {
		logger.Warn("set: value is not an object")
		return value.ErrNotAnObject
	}

	_, key, _, err := e.resolveEntry(nodeKey, nil)
	if err != nil {
		logger.Warn("set: resolve failed", zap.Error(err))
		return err
	}
	keyBytes := []byte(key)

	previous, hasPrev, err := e.storage.Values.Get(ctx, keyBytes)
	if err != nil {
		return &StoreIOError{NodeKey: string(key), Cause: err}
	}
	unchanged := hasPrev && value.DeepEqual(previous, val)

	b := e.storage.Batch()
	if !unchanged {
		counter, err := e.storage.Counters.Get(ctx, keyBytes)
		if err != nil {
			return &StoreIOError{NodeKey: string(key), Cause: err}
		}
		e.storage.Counters.Put(b, keyBytes, counter+1)
		e.storage.Values.Put(b, keyBytes, val)
	}
	e.storage.Freshness.Put(b, keyBytes, views.StateUpToDate)

	if !unchanged {
		if err := e.cascade(ctx, b, key, false); err != nil {
			return err
		}
	}

	if err := e.storage.Apply(ctx, b); err != nil {
		return &StoreIOError{NodeKey: string(key), Cause: err}
	}
	e.metrics.recordSet(string(key), unchanged, time.Since(start))
	logger.Debug("set: ok", zap.Bool("unchanged", unchanged))
	return nil
}

// Invalidate implements the public invalidate operation (spec.md §4.4.1,
// §4.4.3): mark the node and every transitive dependent
// potentially-outdated, without recomputing. invalidate(N); invalidate(N)
// is idempotent (spec.md P6): the second call stages no writes.
func (e *Engine) Invalidate(ctx context.Context, nodeKey string) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	start := time.Now()
	logger := e.logger.With(zap.String("trace", newTraceID()), zap.String("op", "invalidate"), zap.String("nodeKey", nodeKey))

	sch, key, args, err := e.resolveEntry(nodeKey, nil)
	if err != nil {
		logger.Warn("invalidate: resolve failed", zap.Error(err))
		return err
	}
	keyBytes := []byte(key)

	b := e.storage.Batch()

	state, err := e.storage.Freshness.Get(ctx, keyBytes)
	if err != nil {
		return &StoreIOError{NodeKey: string(key), Cause: err}
	}

	// spec.md §4.4.3 step 4: a never-materialized node still needs its
	// declared inputs' revdeps populated so a future set on them finds it.
	if state == views.StateMissing {
		outVars := sch.Output.Vars
		bound := make(map[string]*value.Value, len(outVars))
		for i, v := range outVars {
			bound[v] = args[i]
		}
		for _, tmpl := range sch.Inputs {
			depBindings := make([]*value.Value, len(tmpl.Vars))
			for j, v := range tmpl.Vars {
				depBindings[j] = bound[v]
			}
			depKey, err := latticeschema.Instantiate(tmpl, depBindings)
			if err != nil {
				return err
			}
			if _, err := e.storage.Revdeps.AddIfMissing(ctx, b, []byte(depKey), string(key)); err != nil {
				return &StoreIOError{NodeKey: string(key), Cause: err}
			}
		}
	}

	if err := e.cascade(ctx, b, key, true); err != nil {
		return err
	}

	if err := e.storage.Apply(ctx, b); err != nil {
		return &StoreIOError{NodeKey: string(key), Cause: err}
	}
	e.metrics.recordInvalidate(string(key), time.Since(start))
	logger.Debug("invalidate: ok")
	return nil
}

// cascade performs the breadth-first revdeps traversal shared by Set and
// Invalidate (spec.md §4.4.3 steps 2-3): stage freshness =
// potentially-outdated for every node in the transitive-dependent closure
// of root that is not already potentially-outdated (up-to-date, or with no
// freshness record); an already potentially-outdated node is a no-op,
// bounding work. includeRoot distinguishes
// invalidate(root) (root itself is marked outdated) from set(root) (root
// was just written fresh, only its dependents cascade).
func (e *Engine) cascade(ctx context.Context, b *views.Batch, root latticeschema.NodeKey, includeRoot bool) error {
	visited := map[latticeschema.NodeKey]bool{root: true}
	var queue []latticeschema.NodeKey

	// markIfNeeded stages the potentially-outdated write and reports
	// whether traversal should continue past key: an already
	// potentially-outdated node's dependents were necessarily marked by
	// the cascade that made it outdated (invariant I5), so expansion stops
	// there to bound work.
	markIfNeeded := func(key latticeschema.NodeKey) (bool, error) {
		state, err := e.storage.Freshness.Get(ctx, []byte(key))
		if err != nil {
			return false, &StoreIOError{NodeKey: string(key), Cause: err}
		}
		if state == views.StatePotentiallyOutdated {
			return false, nil
		}
		e.storage.Freshness.Put(b, []byte(key), views.StatePotentiallyOutdated)
		return true, nil
	}

	if includeRoot {
		expand, err := markIfNeeded(root)
		if err != nil {
			return err
		}
		if expand {
			queue = append(queue, root)
		}
	} else {
		queue = append(queue, root)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		deps, err := e.storage.Revdeps.Get(ctx, []byte(current))
		if err != nil {
			return &StoreIOError{NodeKey: string(current), Cause: err}
		}
		for _, depStr := range deps {
			dep := latticeschema.NodeKey(depStr)
			if visited[dep] {
				continue
			}
			visited[dep] = true
			expand, err := markIfNeeded(dep)
			if err != nil {
				return err
			}
			if expand {
				queue = append(queue, dep)
			}
		}
	}
	e.metrics.recordCascade(len(visited) - 1)
	return nil
}
