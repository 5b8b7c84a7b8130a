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
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Hash is a stable fingerprint of a compiled schema list; it namespaces all
// five storage views (spec.md §3.1, §4.1 "schemaHash"). Two engines with
// semantically identical schemas (possibly in a different declaration
// order) share storage; any template difference isolates them.
type Hash string

// SchemaHash computes Hash over g's {output, inputs} templates in a fixed
// canonical order (sorted by output template string), so declaration order
// never affects the hash.
func SchemaHash(g *CompiledGraph) Hash {
	lines := make([]string, 0, len(g.ordered))
	for _, s := range g.ordered {
		inputs := make([]string, len(s.Inputs))
		for i, in := range s.Inputs {
			inputs[i] = in.String()
		}
		lines = append(lines, fmt.Sprintf("%s<-[%s]", s.Output.String(), strings.Join(inputs, ",")))
	}
	sort.Strings(lines)
	digest := xxhash.Sum64String(strings.Join(lines, "\n"))
	return Hash(fmt.Sprintf("%016x", digest))
}
