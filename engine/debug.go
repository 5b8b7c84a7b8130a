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
	"sort"

	latticeschema "github.com/latticedb/lattice/schema"
)

// DebugGetFreshness reports nodeKey's current freshness state without
// triggering any recomputation (spec.md §4.4.1, §6.1). nodeKey is treated
// as an already-canonical literal key; callers wanting to debug a
// templated instance must pass its instantiated form.
func (e *Engine) DebugGetFreshness(ctx context.Context, nodeKey string) (string, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	_, key, _, err := e.resolveEntry(nodeKey, nil)
	if err != nil {
		return "", err
	}
	state, err := e.storage.Freshness.Get(ctx, []byte(key))
	if err != nil {
		return "", &StoreIOError{NodeKey: string(key), Cause: err}
	}
	return state.String(), nil
}

// DebugListMaterializedNodes lists every NodeKey with a stored value, sorted
// for deterministic output (spec.md §6.1).
func (e *Engine) DebugListMaterializedNodes(ctx context.Context) ([]string, error) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	keys, err := e.storage.Values.Keys(ctx)
	if err != nil {
		return nil, &StoreIOError{Cause: err}
	}
	sort.Strings(keys)
	return keys, nil
}

// DebugExportGraph renders the compiled schema graph as a DOT document
// (supplements spec.md §6.1 with a visualization entry point used by
// latticectl debug graph).
func (e *Engine) DebugExportGraph() string {
	return latticeschema.ExportDOT(e.graph)
}
