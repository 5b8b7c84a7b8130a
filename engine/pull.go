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

	"github.com/pkg/errors"
	"go.uber.org/zap"

	latticeschema "github.com/latticedb/lattice/schema"
	"github.com/latticedb/lattice/value"
	"github.com/latticedb/lattice/views"
)

// Pull implements the public pull operation (spec.md §4.4.1, §4.4.2). It
// serializes against every other top-level operation on e (spec.md §5) and
// memoizes recursive dependency pulls for the duration of this one call
// (spec.md §4.4.2 "Ordering tie-break").
func (e *Engine) Pull(ctx context.Context, nodeKey string, bindings ...*value.Value) (*value.Value, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	start := time.Now()
	trace := newTraceID()
	logger := e.logger.With(zap.String("trace", trace), zap.String("op", "pull"))

	_, key, _, err := e.resolveEntry(nodeKey, bindings)
	if err != nil {
		logger.Warn("pull: resolve failed", zap.Error(err))
		return nil, err
	}

	sess := &pullSession{e: e, ctx: ctx, memo: make(map[latticeschema.NodeKey]*value.Value), logger: logger}
	val, err := sess.pull(key)
	e.metrics.recordPull(string(key), err == nil, time.Since(start))
	if err != nil {
		logger.Warn("pull: failed", zap.String("nodeKey", string(key)), zap.Error(err))
		return nil, err
	}
	logger.Debug("pull: ok", zap.String("nodeKey", string(key)))
	return val, nil
}

// pullSession carries the per-top-level-call memoization table (spec.md
// §4.4.2: a dependency pulled once is reused by all consumers in that
// call).
type pullSession struct {
	e      *Engine
	ctx    context.Context
	memo   map[latticeschema.NodeKey]*value.Value
	logger *zap.Logger
}

func (s *pullSession) pull(key latticeschema.NodeKey) (*value.Value, error) {
	if v, ok := s.memo[key]; ok {
		return v, nil
	}

	sch, args, ok := latticeschema.Resolve(key, s.e.graph)
	if !ok {
		return nil, &UnknownSchemaError{NodeKey: string(key)}
	}
	keyBytes := []byte(key)

	state, err := s.e.storage.Freshness.Get(s.ctx, keyBytes)
	if err != nil {
		return nil, &StoreIOError{NodeKey: string(key), Cause: err}
	}

	switch state {
	case views.StateUpToDate:
		val, found, err := s.e.storage.Values.Get(s.ctx, keyBytes)
		if err != nil {
			return nil, &StoreIOError{NodeKey: string(key), Cause: err}
		}
		if !found {
			return nil, &CorruptedStateError{NodeKey: string(key), Cause: errors.New("freshness is up-to-date but no value is stored")}
		}
		s.memo[key] = val
		return val, nil

	case views.StatePotentiallyOutdated:
		val, err := s.validate(key, keyBytes)
		if err != nil {
			return nil, err
		}
		if val != nil {
			s.memo[key] = val
			return val, nil
		}
		// Validation failed (or no InputsRecord to validate against): fall
		// through to recompute.
	}

	val, err := s.recompute(sch, key, keyBytes, args)
	if err != nil {
		return nil, err
	}
	s.memo[key] = val
	return val, nil
}

// validate implements spec.md §4.4.2 step 3: replay the recorded inputs,
// re-pulling each (which fixes its own freshness first) and comparing
// counters. A nil, nil return means validation failed (a dependency's
// counter moved) or could not proceed (no InputsRecord), and the caller
// should recompute instead.
func (s *pullSession) validate(key latticeschema.NodeKey, keyBytes []byte) (*value.Value, error) {
	rec, found, err := s.e.storage.Inputs.Get(s.ctx, keyBytes)
	if err != nil {
		return nil, &StoreIOError{NodeKey: string(key), Cause: err}
	}
	if !found {
		return nil, nil
	}

	for i, depKeyStr := range rec.Inputs {
		depKey := latticeschema.NodeKey(depKeyStr)
		if _, err := s.pull(depKey); err != nil {
			return nil, err
		}
		counter, err := s.e.storage.Counters.Get(s.ctx, []byte(depKey))
		if err != nil {
			return nil, &StoreIOError{NodeKey: string(key), Cause: err}
		}
		if counter != rec.InputCounters[i] {
			return nil, nil
		}
	}

	val, found, err := s.e.storage.Values.Get(s.ctx, keyBytes)
	if err != nil {
		return nil, &StoreIOError{NodeKey: string(key), Cause: err}
	}
	if !found {
		return nil, &CorruptedStateError{NodeKey: string(key), Cause: errors.New("potentially-outdated node has no stored value to validate")}
	}

	b := s.e.storage.Batch()
	s.e.storage.Freshness.Put(b, keyBytes, views.StateUpToDate)
	if err := s.e.storage.Apply(s.ctx, b); err != nil {
		return nil, &StoreIOError{NodeKey: string(key), Cause: err}
	}
	return val, nil
}

// recompute implements spec.md §4.4.2 step 4: pull every declared
// dependency, invoke the computor, and commit the result in one batch.
func (s *pullSession) recompute(sch *latticeschema.Schema, key latticeschema.NodeKey, keyBytes []byte, args []*value.Value) (*value.Value, error) {
	outVars := sch.Output.Vars
	bound := make(map[string]*value.Value, len(outVars))
	for i, v := range outVars {
		bound[v] = args[i]
	}

	depKeys := make([]latticeschema.NodeKey, len(sch.Inputs))
	depVals := make([]*value.Value, len(sch.Inputs))
	depCounters := make([]uint64, len(sch.Inputs))

	for i, tmpl := range sch.Inputs {
		depBindings := make([]*value.Value, len(tmpl.Vars))
		for j, v := range tmpl.Vars {
			depBindings[j] = bound[v]
		}
		depKey, err := latticeschema.Instantiate(tmpl, depBindings)
		if err != nil {
			return nil, err
		}
		depVal, err := s.pull(depKey)
		if err != nil {
			return nil, err
		}
		depCounter, err := s.e.storage.Counters.Get(s.ctx, []byte(depKey))
		if err != nil {
			return nil, &StoreIOError{NodeKey: string(key), Cause: err}
		}
		depKeys[i] = depKey
		depVals[i] = depVal
		depCounters[i] = depCounter
	}

	previous, hasPrev, err := s.e.storage.Values.Get(s.ctx, keyBytes)
	if err != nil {
		return nil, &StoreIOError{NodeKey: string(key), Cause: err}
	}

	computeStart := time.Now()
	result, err := sch.Computor(s.ctx, depVals, previous, args)
	s.e.metrics.recordComputor(sch.Output.Head, time.Since(computeStart))
	if err != nil {
		return nil, &ComputorError{NodeKey: string(key), Cause: err}
	}

	b := s.e.storage.Batch()
	var finalVal *value.Value

	if value.IsUnchanged(result) {
		if !hasPrev {
			return nil, &ComputorError{NodeKey: string(key), Cause: errors.Errorf(
				"computor returned Unchanged for %q with no previously stored value", key,
			)}
		}
		finalVal = previous
	} else {
		newVal, ok := result.(*value.Value)
		if !ok {
			return nil, &ComputorError{NodeKey: string(key), Cause: errors.Errorf(
				"computor for %q returned a value of unexpected type %T", key, result,
			)}
		}
		if !newVal.IsObject() {
			return nil, &ComputorError{NodeKey: string(key), Cause: value.ErrNotAnObject}
		}
		if hasPrev && value.DeepEqual(previous, newVal) {
			finalVal = previous
		} else {
			counter, err := s.e.storage.Counters.Get(s.ctx, keyBytes)
			if err != nil {
				return nil, &StoreIOError{NodeKey: string(key), Cause: err}
			}
			s.e.storage.Counters.Put(b, keyBytes, counter+1)
			finalVal = newVal
		}
		s.e.storage.Values.Put(b, keyBytes, finalVal)
	}

	s.e.storage.Freshness.Put(b, keyBytes, views.StateUpToDate)

	rec := &views.InputsRecord{
		Inputs:        make([]string, len(depKeys)),
		InputCounters: depCounters,
	}
	for i, dk := range depKeys {
		rec.Inputs[i] = string(dk)
	}
	if err := s.e.storage.Inputs.Put(b, keyBytes, rec); err != nil {
		return nil, &StoreIOError{NodeKey: string(key), Cause: err}
	}

	for _, dk := range depKeys {
		if _, err := s.e.storage.Revdeps.AddIfMissing(s.ctx, b, []byte(dk), string(key)); err != nil {
			return nil, &StoreIOError{NodeKey: string(key), Cause: err}
		}
	}

	if err := s.e.storage.Apply(s.ctx, b); err != nil {
		return nil, &StoreIOError{NodeKey: string(key), Cause: err}
	}
	return finalVal, nil
}
