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

import "fmt"

// CycleError is raised when the template-level dependency graph built from
// the output/input templates of the supplied schemas contains a cycle
// (spec.md §4.1 "Cycle check").
type CycleError struct {
	Cycle []string // head identifiers forming the cycle, in traversal order
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("schema: cycle detected: %v", e.Cycle)
}

// OverlapError is raised when two schemas' output templates share a head
// identifier and arity (spec.md §4.1 "Overlap check").
type OverlapError struct {
	Head  string
	Arity int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("schema: overlapping output templates for %s/%d", e.Head, e.Arity)
}

// ShapeError is raised for any other structural violation, most commonly a
// free variable in an input template that does not appear in its schema's
// output template (spec.md §4.1 "Free-variable check").
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "schema: " + e.Reason
}
