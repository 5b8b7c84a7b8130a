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

// unchangedSentinel is a private unit type so Unchanged can never unify with
// *Value through an interface conversion (spec.md §9 "it must be impossible
// to conflate it with a genuine value").
type unchangedSentinel struct{}

// Unchanged is the distinguished return a Computor gives to assert that its
// output is bit-identical to the previously stored value (spec.md §4.4.4).
var Unchanged any = unchangedSentinel{}

// IsUnchanged is the only supported way to test a Computor's return value
// for the Unchanged sentinel.
func IsUnchanged(result any) bool {
	_, ok := result.(unchangedSentinel)
	return ok
}
