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
	"fmt"
	"sort"
)

// CompiledGraph is the immutable result of Compile: schemas indexed by
// output (head, arity) for Resolve, plus the original list in declaration
// order for SchemaHash.
type CompiledGraph struct {
	ordered []Schema
	byHead  map[string]map[int]*Schema // head -> arity -> schema
}

// Schemas returns the compiled schema list in its original declaration
// order.
func (g *CompiledGraph) Schemas() []Schema { return g.ordered }

// Lookup finds the unique schema whose output template has the given head
// and arity, returning ok=false if none matches. Uniqueness is guaranteed by
// Compile's overlap check.
func (g *CompiledGraph) Lookup(head string, arity int) (*Schema, bool) {
	byArity, ok := g.byHead[head]
	if !ok {
		return nil, false
	}
	s, ok := byArity[arity]
	return s, ok
}

// Compile validates schemas (spec.md §4.1) and produces an immutable
// CompiledGraph, or fails with a *CycleError, *OverlapError, or *ShapeError.
func Compile(schemas []Schema) (*CompiledGraph, error) {
	g := &CompiledGraph{
		ordered: append([]Schema(nil), schemas...),
		byHead:  make(map[string]map[int]*Schema),
	}

	// Overlap check: same head + same output arity is ambiguous.
	for i := range g.ordered {
		s := &g.ordered[i]
		arity := s.Output.Arity()
		byArity, ok := g.byHead[s.Output.Head]
		if !ok {
			byArity = make(map[int]*Schema)
			g.byHead[s.Output.Head] = byArity
		}
		if _, exists := byArity[arity]; exists {
			return nil, &OverlapError{Head: s.Output.Head, Arity: arity}
		}
		byArity[arity] = s
	}

	// Free-variable check: every free variable of an input template must
	// appear in its schema's own output template.
	for i := range g.ordered {
		s := &g.ordered[i]
		outVars := make(map[string]bool, len(s.Output.Vars))
		for _, v := range s.Output.Vars {
			outVars[v] = true
		}
		for _, in := range s.Inputs {
			for _, v := range in.Vars {
				if !outVars[v] {
					return nil, &ShapeError{Reason: fmt.Sprintf(
						"input template %q of schema %q references free variable %q not bound by the output template",
						in.String(), s.Output.String(), v,
					)}
				}
			}
		}
	}

	// Cycle check: template A depends on template B iff A's output head has
	// an input template whose head equals B's output head. DFS over this
	// head-level graph.
	if cyc := findCycle(g); cyc != nil {
		return nil, &CycleError{Cycle: cyc}
	}

	return g, nil
}

func findCycle(g *CompiledGraph) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var path []string
	var cycle []string

	heads := make([]string, 0, len(g.byHead))
	for h := range g.byHead {
		heads = append(heads, h)
	}
	sort.Strings(heads) // deterministic traversal order

	var visit func(head string) bool
	visit = func(head string) bool {
		color[head] = gray
		path = append(path, head)
		for _, s := range schemasForHead(g, head) {
			for _, in := range s.Inputs {
				switch color[in.Head] {
				case white:
					if visit(in.Head) {
						return true
					}
				case gray:
					cycle = append(append([]string(nil), path...), in.Head)
					return true
				}
			}
		}
		path = path[:len(path)-1]
		color[head] = black
		return false
	}

	for _, h := range heads {
		if color[h] == white {
			if visit(h) {
				return cycle
			}
		}
	}
	return nil
}

func schemasForHead(g *CompiledGraph, head string) []*Schema {
	byArity := g.byHead[head]
	out := make([]*Schema, 0, len(byArity))
	arities := make([]int, 0, len(byArity))
	for a := range byArity {
		arities = append(arities, a)
	}
	sort.Ints(arities)
	for _, a := range arities {
		out = append(out, byArity[a])
	}
	return out
}
