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

// Package numeric holds small integer helpers used by the counter codec.
package numeric

import "strconv"

// MaxUint64 is the largest value a Counter can hold. Nothing in this package
// checks for overflow past it.
const MaxUint64 = 1<<64 - 1

// ParseUint64 parses s as a decimal integer. It is used to decode counters
// read back from storage; a failed parse is the caller's signal to raise
// CorruptedStateError rather than guess.
func ParseUint64(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 64)
	return v, err == nil
}

// FormatUint64 renders a counter value for storage.
func FormatUint64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
