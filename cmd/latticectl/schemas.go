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

package main

import (
	"context"

	"github.com/latticedb/lattice/schema"
	"github.com/latticedb/lattice/value"
)

// schemas returns the compiled schema set latticectl operates against.
// Computors live in Go, not in a config file, so an operator wiring a real
// deployment replaces this function with their own; it ships with a small
// source/passthrough pair so pull/set/invalidate/debug are exercisable out
// of the box against an empty store.
func schemas() []schema.Schema {
	return []schema.Schema{
		{
			Output:          schema.MustParseTemplate("source(key)"),
			Inputs:          nil,
			IsDeterministic: false,
			HasSideEffects:  false,
			Computor: func(_ context.Context, _ []*value.Value, previous *value.Value, _ []*value.Value) (any, error) {
				if previous != nil {
					return previous, nil
				}
				empty, err := value.Parse([]byte(`{}`))
				if err != nil {
					return nil, err
				}
				return empty, nil
			},
		},
		{
			Output:          schema.MustParseTemplate("derived(key)"),
			Inputs:          []schema.NameTemplate{schema.MustParseTemplate("source(key)")},
			IsDeterministic: true,
			HasSideEffects:  false,
			Computor: func(_ context.Context, inputs []*value.Value, _ *value.Value, _ []*value.Value) (any, error) {
				return inputs[0], nil
			},
		},
	}
}
