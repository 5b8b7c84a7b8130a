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

package schema

import (
	"context"

	"github.com/latticedb/lattice/value"
)

// Computor is the user-supplied function bound to a Schema (spec.md §6.3).
// inputs are ordered as declared; previous is the engine's stored value for
// this node if any (nil otherwise). The returned any is either a *value.Value
// or value.Unchanged — callers must test with value.IsUnchanged before type
// asserting to *value.Value.
type Computor func(ctx context.Context, inputs []*value.Value, previous *value.Value, bindings []*value.Value) (any, error)

// Schema is one rule in the compiled graph (spec.md §3.1).
type Schema struct {
	Output          NameTemplate
	Inputs          []NameTemplate
	Computor        Computor
	IsDeterministic bool
	HasSideEffects  bool
}
