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

import "github.com/emicklei/dot"

// ExportDOT renders the compiled template-level dependency graph as a DOT
// document, for `latticectl debug graph` and for diagnosing cycle/overlap
// rejections during development.
func ExportDOT(g *CompiledGraph) string {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "LR")

	nodes := make(map[string]dot.Node)
	nodeFor := func(head string) dot.Node {
		if n, ok := nodes[head]; ok {
			return n
		}
		n := graph.Node(head)
		nodes[head] = n
		return n
	}

	for _, s := range g.ordered {
		out := nodeFor(s.Output.Head)
		out.Label(s.Output.String())
		for _, in := range s.Inputs {
			graph.Edge(nodeFor(in.Head), out)
		}
	}
	return graph.String()
}
